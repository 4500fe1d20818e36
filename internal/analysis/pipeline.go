// Package analysis drives the report pipeline: it runs each analysis
// dimension (main reports, civil liability, tiered coverage, per-warranty,
// overall, temporal) over the cleaned dataset as one configuration-driven
// loop, emitting table and chart artifacts for each.
package analysis

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/banshee-data/claims.report/internal/claims"
	"github.com/banshee-data/claims.report/internal/monitoring"
	"github.com/banshee-data/claims.report/internal/report"
)

// Warranty types with dedicated analysis dimensions.
const (
	WarrantyCivilLiability   = "CIVIL LIABILITY INSURANCE"
	WarrantyGlasses          = "GLASSES"
	WarrantyTravelAssistance = "TRAVEL ASSISTANCE"
)

// Histogram bin count for claim-amount distribution plots.
const distributionBins = 30

// Options tunes the pipeline.
type Options struct {
	// MinClaimsForDetail gates the full age/brand/geography breakdown: a
	// warranty below this count gets a basic statistics summary only.
	MinClaimsForDetail int

	// TopN limits ranked chart listings.
	TopN int

	// AgeSchema is the fixed age bucket set.
	AgeSchema claims.AgeBuckets
}

// Summary reports what a run did.
type Summary struct {
	Records           int
	DroppedRows       int
	DimensionsRun     int
	DimensionErrors   int
	SkippedWarranties []string
	WarrantyLoss      []WarrantyLoss
}

// Pipeline runs all analysis dimensions over one cleaned dataset. Dimensions
// are independent: each only reads the dataset and writes its own artifact
// subtree, and a failure in one never stops the others.
type Pipeline struct {
	ds  *claims.Dataset
	em  *report.Emitter
	opt Options
	sum Summary
}

// New creates a pipeline over the dataset.
func New(ds *claims.Dataset, em *report.Emitter, opt Options) *Pipeline {
	return &Pipeline{ds: ds, em: em, opt: opt}
}

// Run executes every dimension and returns the run summary.
func (p *Pipeline) Run() *Summary {
	p.sum.Records = p.ds.Len()
	p.sum.DroppedRows = p.ds.DroppedRows

	dimensions := []struct {
		name string
		run  func() error
	}{
		{"main reports", p.mainReports},
		{"civil liability", p.civilLiability},
		{"tiered coverage", p.tieredCoverage},
		{"other warranties", p.otherWarranties},
		{"policyholder demographics", p.demographics},
		{"overall dataset", p.overall},
		{"temporal patterns", p.temporal},
		{"overview dashboard", p.dashboard},
	}
	for _, d := range dimensions {
		p.runDimension(d.name, d.run)
	}
	return &p.sum
}

// runDimension isolates one dimension: errors and panics are logged with the
// dimension name and the remaining dimensions continue.
func (p *Pipeline) runDimension(name string, run func() error) {
	defer func() {
		if r := recover(); r != nil {
			monitoring.Logf("analysis of %s panicked: %v", name, r)
			p.sum.DimensionErrors++
		}
	}()

	fmt.Printf("--- Analyzing: %s ---\n", name)
	if err := run(); err != nil {
		monitoring.Logf("analysis of %s failed: %v", name, err)
		p.sum.DimensionErrors++
		return
	}
	p.sum.DimensionsRun++
}

func (p *Pipeline) mainReports() error {
	sums := claims.Describe(p.ds, []claims.Metric{
		claims.MetricAge,
		claims.MetricClaimAmount,
		claims.MetricPremiumAmount,
		claims.MetricLossRatio,
	})
	if err := p.em.Summary(sums, "Descriptive Statistics",
		"main_reports", "descriptive_statistics.txt"); err != nil {
		return err
	}

	p.sum.WarrantyLoss = WarrantyLossSummary(p.ds)
	return p.em.Grid(lossGrid(p.sum.WarrantyLoss),
		"Indicative Payout vs. Annual Premium (Claiming Policies)",
		"main_reports", "illustrative_loss_indication_by_warranty.txt")
}

func (p *Pipeline) civilLiability() error {
	sub := p.ds.ByWarranty(WarrantyCivilLiability)
	if sub.Len() == 0 {
		fmt.Printf("No claims for %s; skipping detailed analysis.\n", WarrantyCivilLiability)
		return nil
	}
	fmt.Printf("Found %d claims for %s.\n", sub.Len(), WarrantyCivilLiability)
	return p.breakdown(sub, "Civil Liability", "cl_", true, "civil_liability_analysis")
}

func (p *Pipeline) tieredCoverage() error {
	tiered := map[string]bool{WarrantyGlasses: true, WarrantyTravelAssistance: true}
	sub := p.ds.Filter(func(r *claims.ClaimRecord) bool { return tiered[r.Warranty] })
	if sub.Len() == 0 {
		fmt.Println("No claims for GLASSES or TRAVEL ASSISTANCE; skipping tiered coverage analysis.")
		return nil
	}

	premiumDist, err := claims.Aggregate(sub, claims.Request{
		GroupBy: []claims.Field{claims.FieldWarranty},
		Metric:  claims.MetricPremiumAmount,
		Ops:     []claims.Op{claims.OpMean, claims.OpMin, claims.OpMax, claims.OpCount},
	})
	if err != nil {
		return err
	}
	if err := p.em.Table(premiumDist,
		"Premium Amount Distribution for Glasses & Travel Assistance",
		"tiered_coverage_analysis", "premium_distribution.txt"); err != nil {
		return err
	}

	claimDist, err := claims.Aggregate(sub, claims.Request{
		GroupBy: []claims.Field{claims.FieldWarranty},
		Metric:  claims.MetricClaimAmount,
		Ops:     []claims.Op{claims.OpMean, claims.OpMedian, claims.OpMin, claims.OpMax, claims.OpStd},
	})
	if err != nil {
		return err
	}
	if err := p.em.Table(claimDist,
		"Claim Amount Distribution for Glasses & Travel Assistance",
		"tiered_coverage_analysis", "claim_distribution.txt"); err != nil {
		return err
	}

	for _, name := range []string{WarrantyGlasses, WarrantyTravelAssistance} {
		wds := sub.ByWarranty(name)
		values := claims.MetricValues(wds, claims.MetricClaimAmount)
		if len(values) == 0 {
			continue
		}
		err := p.em.Histogram(values, distributionBins,
			fmt.Sprintf("Distribution of Claim Amounts for %s", name), "Claim Amount",
			"tiered_coverage_analysis", report.Slug(name)+"_claim_dist.png")
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) otherWarranties() error {
	analyzedMain := map[string]bool{
		WarrantyCivilLiability:   true,
		WarrantyGlasses:          true,
		WarrantyTravelAssistance: true,
	}

	for _, name := range p.ds.Warranties() {
		if analyzedMain[name] {
			continue
		}

		fmt.Printf("-- Analyzing warranty: %s --\n", name)
		wds := p.ds.ByWarranty(name)
		slug := report.Slug(name)

		if wds.Len() < p.opt.MinClaimsForDetail {
			fmt.Printf("Skipping detailed analysis for %s: %d claims (minimum %d).\n",
				name, wds.Len(), p.opt.MinClaimsForDetail)
			p.sum.SkippedWarranties = append(p.sum.SkippedWarranties, name)

			sums := claims.Describe(wds, []claims.Metric{
				claims.MetricClaimAmount, claims.MetricPremiumAmount,
			})
			title := fmt.Sprintf("Basic Stats for %s (%d claims)", name, wds.Len())
			if err := p.em.Summary(sums, title,
				"other_warranties_analysis", slug, "basic_stats_summary.txt"); err != nil {
				monitoring.Logf("basic summary for warranty %s failed: %v", name, err)
				p.sum.DimensionErrors++
			}
			continue
		}

		if err := p.breakdown(wds, name, "", false, "other_warranties_analysis", slug); err != nil {
			monitoring.Logf("analysis of warranty %s failed: %v", name, err)
			p.sum.DimensionErrors++
		}
	}
	return nil
}

func (p *Pipeline) demographics() error {
	base := []string{"overall_analysis", "demographics"}

	genderCounts, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldGender},
		Metric:  claims.MetricClaimAmount,
		Ops:     []claims.Op{claims.OpCount, claims.OpMean, claims.OpSum, claims.OpMedian},
	})
	if err != nil {
		return err
	}
	if err := p.emitPair(genderCounts, claims.OpCount,
		"Claims by Policyholder Gender", "Number of Claims", false,
		base, "claims_by_gender"); err != nil {
		return err
	}

	genderLoss, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldGender},
		Metric:  claims.MetricLossRatio,
		Ops:     []claims.Op{claims.OpMean, claims.OpMedian},
	})
	if err != nil {
		return err
	}
	if err := p.em.Table(genderLoss, "Loss Ratio by Policyholder Gender",
		"overall_analysis", "demographics", "loss_ratio_by_gender.txt"); err != nil {
		return err
	}

	ageGender, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy:   []claims.Field{claims.FieldAgeGroup, claims.FieldGender},
		Metric:    claims.MetricClaimAmount,
		Ops:       []claims.Op{claims.OpCount, claims.OpMean},
		AgeSchema: p.opt.AgeSchema,
	})
	if err != nil {
		return err
	}
	return p.em.Table(ageGender, "Claim Amounts by Age Group and Gender",
		"overall_analysis", "demographics", "avg_amount_by_age_and_gender.txt")
}

func (p *Pipeline) overall() error {
	fmt.Printf("Found %d claims in the overall dataset.\n", p.ds.Len())
	return p.breakdown(p.ds, "Overall", "overall_", true, "overall_analysis")
}

func (p *Pipeline) temporal() error {
	base := []string{"overall_analysis", "temporal_analysis"}

	monthCounts, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldMonthName},
		Ops:     []claims.Op{claims.OpCount},
	})
	if err != nil {
		return err
	}
	if err := p.emitPair(monthCounts, claims.OpCount,
		"Number of Claims by Month", "Number of Claims", false,
		base, "claims_by_month"); err != nil {
		return err
	}

	monthAvg, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldMonthName},
		Metric:  claims.MetricClaimAmount,
		Ops:     []claims.Op{claims.OpMean},
	})
	if err != nil {
		return err
	}
	if err := p.emitPair(monthAvg, claims.OpMean,
		"Average Claim Amount by Month", "Average Claim Amount", false,
		base, "avg_amount_by_month"); err != nil {
		return err
	}

	quarterCounts, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldQuarter},
		Ops:     []claims.Op{claims.OpCount},
	})
	if err != nil {
		return err
	}
	return p.emitPair(quarterCounts, claims.OpCount,
		"Number of Claims by Quarter", "Number of Claims", false,
		base, "claims_by_quarter")
}

func (p *Pipeline) dashboard() error {
	byWarranty, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy:  []claims.Field{claims.FieldWarranty},
		Ops:      []claims.Op{claims.OpCount},
		SortBy:   claims.OpCount,
		SortDesc: true,
		TopN:     p.opt.TopN,
	})
	if err != nil {
		return err
	}
	byMonth, err := claims.Aggregate(p.ds, claims.Request{
		GroupBy: []claims.Field{claims.FieldMonthName},
		Ops:     []claims.Op{claims.OpCount},
	})
	if err != nil {
		return err
	}
	return p.em.Dashboard(byWarranty, byMonth, "overview.html")
}

// breakdown emits the standard age/brand/geography breakdown for one slice
// of the dataset. When grouped is true the artifacts land in the original
// age_analysis/vehicle_brand_analysis/geographical_analysis subdirectories;
// otherwise they are flat under base.
func (p *Pipeline) breakdown(ds *claims.Dataset, label, prefix string, grouped bool, base ...string) error {
	dir := func(sub string) []string {
		if grouped {
			return append(append([]string(nil), base...), sub)
		}
		return base
	}

	ageCounts, err := claims.Aggregate(ds, claims.Request{
		GroupBy:   []claims.Field{claims.FieldAgeGroup},
		Ops:       []claims.Op{claims.OpCount},
		AgeSchema: p.opt.AgeSchema,
	})
	if err != nil {
		return err
	}
	if err := p.emitPair(ageCounts, claims.OpCount,
		fmt.Sprintf("Number of %s Claims by Age Group", label), "Number of Claims", false,
		dir("age_analysis"), prefix+"claims_by_age_group"); err != nil {
		return err
	}

	ageAvg, err := claims.Aggregate(ds, claims.Request{
		GroupBy:   []claims.Field{claims.FieldAgeGroup},
		Metric:    claims.MetricClaimAmount,
		Ops:       []claims.Op{claims.OpMean},
		AgeSchema: p.opt.AgeSchema,
	})
	if err != nil {
		return err
	}
	if err := p.emitPair(ageAvg, claims.OpMean,
		fmt.Sprintf("Average %s Claim Amount by Age Group", label), "Average Claim Amount", false,
		dir("age_analysis"), prefix+"avg_amount_by_age_group"); err != nil {
		return err
	}

	ranked := []struct {
		field claims.Field
		sub   string
		file  string
		title string
	}{
		{claims.FieldBrand, "vehicle_brand_analysis", "claims_by_brand", "Vehicle Brand"},
		{claims.FieldRegion, "geographical_analysis", "claims_by_region", "Region"},
		{claims.FieldProvince, "geographical_analysis", "claims_by_province", "Province"},
	}
	for _, r := range ranked {
		counts, err := claims.Aggregate(ds, claims.Request{
			GroupBy:  []claims.Field{r.field},
			Ops:      []claims.Op{claims.OpCount},
			SortBy:   claims.OpCount,
			SortDesc: true,
			TopN:     p.opt.TopN,
		})
		if err != nil {
			return err
		}
		if err := p.emitPair(counts, claims.OpCount,
			fmt.Sprintf("%s Claims by %s (Top %d shown in plot)", label, r.title, p.opt.TopN),
			"Number of Claims", true,
			dir(r.sub), prefix+r.file); err != nil {
			return err
		}

		avg, err := claims.Aggregate(ds, claims.Request{
			GroupBy:  []claims.Field{r.field},
			Metric:   claims.MetricClaimAmount,
			Ops:      []claims.Op{claims.OpMean},
			SortBy:   claims.OpMean,
			SortDesc: true,
			TopN:     p.opt.TopN,
		})
		if err != nil {
			return err
		}
		avgFile := "avg_amount" + r.file[len("claims"):]
		if err := p.emitPair(avg, claims.OpMean,
			fmt.Sprintf("Avg %s Claim Amount by %s (Top %d shown in plot)", label, r.title, p.opt.TopN),
			"Average Claim Amount", true,
			dir(r.sub), prefix+avgFile); err != nil {
			return err
		}
	}
	return nil
}

// emitPair writes the table and chart artifacts for one aggregation.
func (p *Pipeline) emitPair(res *claims.Result, op claims.Op, title, valueLabel string, horizontal bool, dir []string, stem string) error {
	tablePath := append(append([]string(nil), dir...), stem+".txt")
	if err := p.em.Table(res, title, tablePath...); err != nil {
		return err
	}
	chartPath := append(append([]string(nil), dir...), stem+".png")
	if err := p.em.BarChart(res, op, title, valueLabel, horizontal, chartPath...); err != nil {
		return err
	}
	return nil
}

// WarrantyLoss is one row of the indicative loss summary: total payouts
// against total premiums for the policies that claimed under a warranty.
type WarrantyLoss struct {
	Warranty     string
	Claims       int
	AvgPremium   float64
	AvgClaim     float64
	TotalClaim   float64
	TotalPremium float64

	// PayoutPct is total claim / total premium, as a percentage. Invalid
	// when the warranty's total premium is zero.
	PayoutPct   float64
	PayoutValid bool
}

// WarrantyLossSummary computes the indicative loss summary per warranty,
// ordered by payout percentage descending with undefined payouts last; ties
// break by warranty name.
func WarrantyLossSummary(ds *claims.Dataset) []WarrantyLoss {
	byWarranty := make(map[string]*WarrantyLoss)
	var order []string
	for i := range ds.Records {
		rec := &ds.Records[i]
		w := byWarranty[rec.Warranty]
		if w == nil {
			w = &WarrantyLoss{Warranty: rec.Warranty}
			byWarranty[rec.Warranty] = w
			order = append(order, rec.Warranty)
		}
		w.Claims++
		w.TotalClaim += rec.ClaimAmount
		w.TotalPremium += rec.PremiumAmount
	}

	out := make([]WarrantyLoss, 0, len(order))
	for _, name := range order {
		w := byWarranty[name]
		w.AvgClaim = w.TotalClaim / float64(w.Claims)
		w.AvgPremium = w.TotalPremium / float64(w.Claims)
		if w.TotalPremium > 0 {
			w.PayoutPct = w.TotalClaim / w.TotalPremium * 100
			w.PayoutValid = true
		}
		out = append(out, *w)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PayoutValid != out[j].PayoutValid {
			return out[i].PayoutValid
		}
		if out[i].PayoutValid && out[i].PayoutPct != out[j].PayoutPct {
			return out[i].PayoutPct > out[j].PayoutPct
		}
		return out[i].Warranty < out[j].Warranty
	})
	return out
}

func lossGrid(rows []WarrantyLoss) report.Grid {
	g := report.Grid{Columns: []string{
		"WARRANTY", "NUMBER_OF_CLAIMS", "AVERAGE_PREMIUM", "AVERAGE_CLAIM_COST",
		"TOTAL_CLAIM_AMOUNT_PAID", "TOTAL_PREMIUM_PAID", "INDICATIVE_PAYOUT_PCT",
	}}
	for _, r := range rows {
		payout := "n/a"
		if r.PayoutValid {
			payout = strconv.FormatFloat(r.PayoutPct, 'f', 2, 64)
		}
		g.Rows = append(g.Rows, []string{
			r.Warranty,
			strconv.Itoa(r.Claims),
			strconv.FormatFloat(r.AvgPremium, 'f', 2, 64),
			strconv.FormatFloat(r.AvgClaim, 'f', 2, 64),
			strconv.FormatFloat(r.TotalClaim, 'f', 2, 64),
			strconv.FormatFloat(r.TotalPremium, 'f', 2, 64),
			payout,
		})
	}
	return g
}
