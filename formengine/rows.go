package formengine

import (
	"regexp"
	"strconv"

	"github.com/mmdatafocus/kvk_backend/models"
)

// RowField is one column of a repeating table; its inputs are named <prefix>_<suffix>_<n>.
type RowField struct {
	Suffix string
	Label  string
	Kind   Kind
}

// RowTable describes a repeating-row editor bound to one slice of the record.
type RowTable interface {
	Prefix() string
	Title() string
	Fields() []RowField
	// Initial is the number of rows a fresh form starts with.
	Initial() int

	defaults(n int) map[string]string
	extract(rows []map[string]string, r *models.NewReport)
	populate(r *models.NewReport) []map[string]string
}

type rowColumn[T any] struct {
	suffix string
	label  string
	accessor[T]
}

// rowTable binds a slice of T. finish runs on every kept row with its 1-based row number.
type rowTable[T any] struct {
	prefix  string
	title   string
	columns []rowColumn[T]
	initial []map[string]string
	slice   func(*models.NewReport) *[]T
	finish  func(row *T, n int)
}

func col[T any](suffix, label string, a accessor[T]) rowColumn[T] {
	return rowColumn[T]{suffix: suffix, label: label, accessor: a}
}

func (t *rowTable[T]) Prefix() string { return t.prefix }
func (t *rowTable[T]) Title() string  { return t.title }
func (t *rowTable[T]) Initial() int   { return len(t.initial) }

func (t *rowTable[T]) Fields() []RowField {
	out := make([]RowField, len(t.columns))
	for i, c := range t.columns {
		out[i] = RowField{Suffix: c.suffix, Label: c.label, Kind: c.kind}
	}
	return out
}

func (t *rowTable[T]) defaults(n int) map[string]string {
	if n < 1 || n > len(t.initial) {
		return nil
	}
	return t.initial[n-1]
}

// extract drops rows whose every cell is blank.
func (t *rowTable[T]) extract(rows []map[string]string, r *models.NewReport) {
	out := []T{}
	for i, cells := range rows {
		if blankRow(cells) {
			continue
		}
		var row T
		for _, c := range t.columns {
			c.assign(&row, cells[c.suffix])
		}
		if t.finish != nil {
			t.finish(&row, i+1)
		}
		out = append(out, row)
	}
	*t.slice(r) = out
}

func (t *rowTable[T]) populate(r *models.NewReport) []map[string]string {
	src := *t.slice(r)
	rows := make([]map[string]string, len(src))
	for i := range src {
		cells := make(map[string]string, len(t.columns))
		for _, c := range t.columns {
			cells[c.suffix] = c.format(&src[i])
		}
		rows[i] = cells
	}
	return rows
}

func blankRow(cells map[string]string) bool {
	for _, v := range cells {
		if trimmed(v) != "" {
			return false
		}
	}
	return true
}

type (
	staffRow   = models.StaffMember
	infraRow   = models.Infrastructure
	vehicleRow = models.Vehicle
	equipRow   = models.Equipment
	sacRow     = models.SacMeeting
	opRow      = models.OperationalArea
	villageRow = models.VillageAdoption
	oftRow     = models.OftDetail
	perfRow    = models.OftPerformance
	demoRow    = models.Demonstration
)

func demoTable(prefix, title string, slice func(*models.NewReport) *[]demoRow) *rowTable[demoRow] {
	return &rowTable[demoRow]{
		prefix: prefix,
		title:  title,
		columns: []rowColumn[demoRow]{
			col("crop", "Crop", textOf(func(d *demoRow) *string { return &d.Crop })),
			col("technology", "Technology Demonstrated", textOf(func(d *demoRow) *string { return &d.TechnologyDemonstrated })),
			col("area", "Area (ha)", numOf(func(d *demoRow) *float64 { return &d.Area })),
			col("farmers", "No. of Farmers", intOf(func(d *demoRow) *int { return &d.NumberOfFarmers })),
			col("demo_yield", "Demo Yield (q/ha)", numOf(func(d *demoRow) *float64 { return &d.DemoYield })),
			col("check_yield", "Check Yield (q/ha)", numOf(func(d *demoRow) *float64 { return &d.CheckYield })),
			col("increase", "% Increase", numOf(func(d *demoRow) *float64 { return &d.PercentageIncrease })),
		},
		slice:  slice,
		finish: func(d *demoRow, _ int) { d.RecomputeIncrease() },
	}
}

// RowTables lists every repeating table in form order.
var RowTables = []RowTable{
	&rowTable[staffRow]{
		prefix: "staff",
		title:  "Staff Position",
		columns: []rowColumn[staffRow]{
			col("position", "Sanctioned Post", textOf(func(s *staffRow) *string { return &s.Position })),
			col("name", "Name", textOf(func(s *staffRow) *string { return &s.Name })),
			col("designation", "Designation", textOf(func(s *staffRow) *string { return &s.Designation })),
			col("discipline", "Discipline", textOf(func(s *staffRow) *string { return &s.Discipline })),
			col("pay_scale", "Pay Scale", textOf(func(s *staffRow) *string { return &s.PayScale })),
			col("joining_date", "Date of Joining", dateOf(func(s *staffRow) *string { return &s.JoiningDate })),
			col("status", "Status", textOf(func(s *staffRow) *string { return &s.Status })),
			col("category", "Category", textOf(func(s *staffRow) *string { return &s.Category })),
		},
		initial: []map[string]string{{"position": "Senior Scientist & Head"}},
		slice:   func(r *models.NewReport) *[]staffRow { return &r.Staff },
		finish:  func(s *staffRow, n int) { s.SlNo = n },
	},
	&rowTable[infraRow]{
		prefix: "infra",
		title:  "Infrastructure",
		columns: []rowColumn[infraRow]{
			col("name", "Infrastructure", textOf(func(s *infraRow) *string { return &s.Name })),
			col("status", "Status", textOf(func(s *infraRow) *string { return &s.Status })),
			col("plinth_area", "Plinth Area (sq m)", numOf(func(s *infraRow) *float64 { return &s.PlinthArea })),
			col("under_use", "Under Use", textOf(func(s *infraRow) *string { return &s.UnderUse })),
			col("funding_source", "Source of Funding", textOf(func(s *infraRow) *string { return &s.FundingSource })),
		},
		initial: []map[string]string{{"name": "Administrative Building"}},
		slice:   func(r *models.NewReport) *[]infraRow { return &r.Infra },
	},
	&rowTable[vehicleRow]{
		prefix: "vehicle",
		title:  "Vehicles",
		columns: []rowColumn[vehicleRow]{
			col("type", "Type of Vehicle", textOf(func(v *vehicleRow) *string { return &v.Type })),
			col("year", "Year of Purchase", intOf(func(v *vehicleRow) *int { return &v.YearOfPurchase })),
			col("cost", "Cost (Rs.)", numOf(func(v *vehicleRow) *float64 { return &v.Cost })),
			col("km_run", "Total km Run", numOf(func(v *vehicleRow) *float64 { return &v.TotalKmRun })),
			col("status", "Present Status", textOf(func(v *vehicleRow) *string { return &v.Status })),
		},
		slice: func(r *models.NewReport) *[]vehicleRow { return &r.Vehicles },
	},
	&rowTable[equipRow]{
		prefix: "equipment",
		title:  "Equipment",
		columns: []rowColumn[equipRow]{
			col("category", "Category", textOf(func(e *equipRow) *string { return &e.Category })),
			col("name", "Name of Equipment", textOf(func(e *equipRow) *string { return &e.Name })),
			col("year", "Year of Purchase", intOf(func(e *equipRow) *int { return &e.YearOfPurchase })),
			col("cost", "Cost (Rs.)", numOf(func(e *equipRow) *float64 { return &e.Cost })),
			col("status", "Present Status", textOf(func(e *equipRow) *string { return &e.Status })),
			col("funding", "Source of Funding", textOf(func(e *equipRow) *string { return &e.FundingSource })),
		},
		initial: []map[string]string{{"category": "Lab Equipment"}},
		slice:   func(r *models.NewReport) *[]equipRow { return &r.Equipment },
	},
	&rowTable[sacRow]{
		prefix: "sac",
		title:  "SAC Meetings",
		columns: []rowColumn[sacRow]{
			col("date", "Date", dateOf(func(s *sacRow) *string { return &s.Date })),
			col("participants", "Participants", intOf(func(s *sacRow) *int { return &s.Participants })),
			col("recommendations", "Salient Recommendations", longTextOf(func(s *sacRow) *string { return &s.Recommendations })),
			col("action_taken", "Action Taken", longTextOf(func(s *sacRow) *string { return &s.ActionTaken })),
		},
		slice: func(r *models.NewReport) *[]sacRow { return &r.SacMeetings },
	},
	&rowTable[opRow]{
		prefix: "op",
		title:  "Operational Area",
		columns: []rowColumn[opRow]{
			col("taluk", "Taluk", textOf(func(o *opRow) *string { return &o.Taluk })),
			col("block", "Block", textOf(func(o *opRow) *string { return &o.Block })),
			col("villages", "Villages", longTextOf(func(o *opRow) *string { return &o.Villages })),
			col("crops", "Major Crops", longTextOf(func(o *opRow) *string { return &o.MajorCrops })),
			col("problems", "Problems", longTextOf(func(o *opRow) *string { return &o.Problems })),
			col("thrust_areas", "Thrust Areas", longTextOf(func(o *opRow) *string { return &o.ThrustAreas })),
		},
		slice: func(r *models.NewReport) *[]opRow { return &r.OperationalAreas },
	},
	&rowTable[villageRow]{
		prefix: "village",
		title:  "Village Adoption",
		columns: []rowColumn[villageRow]{
			col("name", "Village", textOf(func(v *villageRow) *string { return &v.Name })),
			col("block", "Block", textOf(func(v *villageRow) *string { return &v.Block })),
			col("action", "Action Taken", longTextOf(func(v *villageRow) *string { return &v.ActionTaken })),
		},
		slice: func(r *models.NewReport) *[]villageRow { return &r.VillageAdoption },
	},
	&rowTable[oftRow]{
		prefix: "oft",
		title:  "On-Farm Trials",
		columns: []rowColumn[oftRow]{
			col("title", "Title", textOf(func(o *oftRow) *string { return &o.Title })),
			col("problem", "Problem Diagnosed", longTextOf(func(o *oftRow) *string { return &o.ProblemDiagnosed })),
			col("technology", "Technology Selected", longTextOf(func(o *oftRow) *string { return &o.TechnologySelected })),
			col("source", "Source of Technology", textOf(func(o *oftRow) *string { return &o.Source })),
			col("production_system", "Production System", textOf(func(o *oftRow) *string { return &o.ProductionSystem })),
			col("performance", "Performance Indicators", longTextOf(func(o *oftRow) *string { return &o.PerformanceIndicators })),
		},
		slice: func(r *models.NewReport) *[]oftRow { return &r.OftDetails },
	},
	&rowTable[perfRow]{
		prefix: "oft_perf",
		title:  "OFT Performance",
		columns: []rowColumn[perfRow]{
			col("technology", "Technology Option", textOf(func(p *perfRow) *string { return &p.TechnologyOption })),
			col("trials", "No. of Trials", intOf(func(p *perfRow) *int { return &p.NumberOfTrials })),
			col("yield", "Yield (q/ha)", numOf(func(p *perfRow) *float64 { return &p.Yield })),
			col("cost", "Cost of Cultivation (Rs./ha)", numOf(func(p *perfRow) *float64 { return &p.CostOfCultivation })),
			col("gross", "Gross Return (Rs./ha)", numOf(func(p *perfRow) *float64 { return &p.GrossReturn })),
			col("net", "Net Return (Rs./ha)", numOf(func(p *perfRow) *float64 { return &p.NetReturn })),
			col("bc_ratio", "BC Ratio", numOf(func(p *perfRow) *float64 { return &p.BcRatio })),
		},
		slice: func(r *models.NewReport) *[]perfRow { return &r.OftPerformance },
	},
	demoTable("cereals", "Cereals Demonstrations", func(r *models.NewReport) *[]demoRow { return &r.CerealsDemo }),
	demoTable("pulses", "Pulses Demonstrations", func(r *models.NewReport) *[]demoRow { return &r.PulsesDemo }),
	demoTable("oilseeds", "Oilseeds Demonstrations", func(r *models.NewReport) *[]demoRow { return &r.OilseedsDemo }),
}

var (
	tablesByPrefix = map[string]RowTable{}
	rowInputs      = map[string]rowInputRef{}
	rowInputRE     = regexp.MustCompile(`^(.+)_([0-9]+)$`)
)

type rowInputRef struct {
	table  RowTable
	suffix string
}

func init() {
	for _, t := range RowTables {
		tablesByPrefix[t.Prefix()] = t
		for _, f := range t.Fields() {
			key := t.Prefix() + "_" + f.Suffix
			if _, dup := rowInputs[key]; dup {
				panic("formengine: duplicate row input " + key)
			}
			rowInputs[key] = rowInputRef{table: t, suffix: f.Suffix}
		}
	}
}

// TableByPrefix returns the table whose inputs start with prefix.
func TableByPrefix(prefix string) (RowTable, bool) {
	t, ok := tablesByPrefix[prefix]
	return t, ok
}

// RowInput names the input for field suffix of row n.
func RowInput(t RowTable, suffix string, n int) string {
	return t.Prefix() + "_" + suffix + "_" + strconv.Itoa(n)
}

// LookupRowInput splits an input such as oft_perf_bc_ratio_2 into its table, field suffix and row number.
func LookupRowInput(input string) (RowTable, string, int, bool) {
	m := rowInputRE.FindStringSubmatch(input)
	if m == nil {
		return nil, "", 0, false
	}
	ref, ok := rowInputs[m[1]]
	if !ok {
		return nil, "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return nil, "", 0, false
	}
	return ref.table, ref.suffix, n, true
}
