package sheets

import "github.com/mmdatafocus/kvk_backend/models"

func col(header string) *Column {
	for i := range reportColumns {
		if reportColumns[i].Name == header {
			return &reportColumns[i]
		}
	}
	panic("sheets: unknown column " + header)
}

func columnsFrom[T any](first int, fields []Field[T]) []TableColumn[T] {
	out := make([]TableColumn[T], 0, len(fields))
	for i, f := range fields {
		out = append(out, TableColumn[T]{Col: first + i, Field: f})
	}
	return out
}

func label(text string, header string) LabelBinding {
	return LabelBinding{Label: text, Field: *col(header)}
}

func labelContaining(text string, header string) LabelBinding {
	return LabelBinding{Label: text, Contains: true, Field: *col(header)}
}

var oftDetailFields = []Field[models.OftDetail]{
	textField("Title", "oftDetails[].title", func(o *models.OftDetail) *string { return &o.Title }),
	textField("Problem", "oftDetails[].problemDiagnosed", func(o *models.OftDetail) *string { return &o.ProblemDiagnosed }),
	textField("Technology", "oftDetails[].technologySelected", func(o *models.OftDetail) *string { return &o.TechnologySelected }),
	textField("Source", "oftDetails[].source", func(o *models.OftDetail) *string { return &o.Source }),
	textField("Production System", "oftDetails[].productionSystem", func(o *models.OftDetail) *string { return &o.ProductionSystem }),
	textField("Performance", "oftDetails[].performanceIndicators", func(o *models.OftDetail) *string { return &o.PerformanceIndicators }),
}

var oftPerformanceFields = []Field[models.OftPerformance]{
	textField("Technology option", "oftPerformance[].technologyOption", func(o *models.OftPerformance) *string { return &o.TechnologyOption }),
	intField("Trials", "oftPerformance[].numberOfTrials", func(o *models.OftPerformance) *int { return &o.NumberOfTrials }),
	numField("Yield", "oftPerformance[].yield", func(o *models.OftPerformance) *float64 { return &o.Yield }),
	numField("Cost", "oftPerformance[].costOfCultivation", func(o *models.OftPerformance) *float64 { return &o.CostOfCultivation }),
	numField("Gross Return", "oftPerformance[].grossReturn", func(o *models.OftPerformance) *float64 { return &o.GrossReturn }),
	numField("Net Return", "oftPerformance[].netReturn", func(o *models.OftPerformance) *float64 { return &o.NetReturn }),
	numField("BC Ratio", "oftPerformance[].bcRatio", func(o *models.OftPerformance) *float64 { return &o.BcRatio }),
}

func demoTable(name, header, path string, list func(r *nr) *[]models.Demonstration) Table[models.Demonstration] {
	columns := columnsFrom(1, demoFields(path))
	columns = append(columns, TableColumn[models.Demonstration]{Col: 7, Field: numField("% Increase", path+"[].percentageIncrease",
		func(d *models.Demonstration) *float64 { return &d.PercentageIncrease })})
	return Table[models.Demonstration]{
		SectionHead: SectionHead{Name: name, Header: header, HeaderRow: true},
		Columns:     columns,
		Anchor:      1,
		Append: func(r *nr, d models.Demonstration) {
			*list(r) = append(*list(r), d)
		},
	}
}

// ReportWorkbook is the multi-sheet layout accepted by ParseWorkbook.
var ReportWorkbook = []SheetSpec{
	{
		Name: "General Information",
		Cells: []CellBinding{
			{"B6", *col("KVK Name")},
			{"B7", *col("KVK Address")},
			{"B8", *col("KVK Telephone")},
			{"B9", *col("KVK Email")},
			{"B10", *col("KVK FAX")},
			{"B13", *col("Host Organization Name")},
			{"B14", *col("Host Organization Address")},
			{"B15", *col("Host Org Telephone")},
			{"B16", *col("Host Org Email")},
			{"B17", textField("Host Org FAX", "hostOrgFax", func(r *nr) *string { return &r.HostOrgFax })},
			{"B20", *col("Senior Scientist Name")},
			{"B21", *col("Senior Scientist Mobile")},
			{"B22", *col("Senior Scientist Email")},
			{"B24", *col("Year of Sanction")},
		},
	},
	{
		Name: "Staff & Infrastructure",
		Sections: []sectionSpec{
			Table[models.StaffMember]{
				SectionHead: SectionHead{Name: "staff", Header: "1.5. Staff Position", HeaderRow: true},
				Columns: append([]TableColumn[models.StaffMember]{
					{Col: 0, Field: intField("Sl. No.", "staff[].slNo", func(s *models.StaffMember) *int { return &s.SlNo })},
				}, columnsFrom(1, staffFields)...),
				Anchor: 2,
				Append: func(r *nr, s models.StaffMember) {
					if s.SlNo == 0 {
						s.SlNo = len(r.Staff) + 1
					}
					r.Staff = append(r.Staff, s)
				},
			},
			LabelSection{
				SectionHead: SectionHead{Name: "land", Header: "1.6. Total land with KVK", HeaderRow: true},
				Labels: []LabelBinding{
					labelContaining("Buildings", "Land Under Buildings (ha)"),
					labelContaining("Demonstration", "Land Under Demo Units (ha)"),
					labelContaining("Crops", "Land Under Crops (ha)"),
					labelContaining("Orchard", "Land Under Orchard (ha)"),
					labelContaining("Others", "Land Others (ha)"),
				},
			},
			Table[models.Infrastructure]{
				SectionHead: SectionHead{Name: "infrastructure", Header: "Name of infrastructure", HeaderCol: 1},
				Columns:     columnsFrom(1, infrastructureFields),
				Anchor:      1,
				Append:      func(r *nr, s models.Infrastructure) { r.Infra = append(r.Infra, s) },
			},
			Table[models.Vehicle]{
				SectionHead: SectionHead{Name: "vehicles", Header: "Type of vehicle"},
				Columns:     columnsFrom(0, vehicleFields),
				Anchor:      0,
				Append:      func(r *nr, v models.Vehicle) { r.Vehicles = append(r.Vehicles, v) },
			},
			Table[models.Equipment]{
				SectionHead: SectionHead{Name: "equipment", Header: "Equipment Category"},
				Columns:     columnsFrom(0, equipmentFields),
				Anchor:      0,
				Append:      func(r *nr, e models.Equipment) { r.Equipment = append(r.Equipment, e) },
			},
		},
	},
	{
		Name: "District Data",
		Labels: []LabelBinding{
			label("Major Farming system/enterprise", "Major Farming System"),
			label("Agro-climatic Zone", "Agro-climatic Zone"),
			label("Agro ecological situation", "Agro Ecological Situation"),
			label("Soil type", "Soil Type"),
			labelContaining("Productivity", "Crop Productivity"),
			labelContaining("Mean yearly temperature", "Mean Temperature (°C)"),
			labelContaining("Mean yearly rainfall", "Mean Rainfall (mm)"),
			labelContaining("Mean relative humidity", "Mean Humidity (%)"),
			labelContaining("livestock products", "Livestock Production"),
		},
		Sections: []sectionSpec{
			Table[models.OperationalArea]{
				SectionHead: SectionHead{Name: "operationalAreas", Header: "2.b. Details of operational area/villages", HeaderRow: true},
				Columns:     columnsFrom(1, operationalAreaFields),
				Anchor:      1,
				Append:      func(r *nr, o models.OperationalArea) { r.OperationalAreas = append(r.OperationalAreas, o) },
			},
			Table[models.VillageAdoption]{
				SectionHead: SectionHead{Name: "villageAdoption", Header: "2.c. Details of village adoption programme", HeaderRow: true},
				Columns:     columnsFrom(0, villageFields),
				Anchor:      0,
				Append:      func(r *nr, v models.VillageAdoption) { r.VillageAdoption = append(r.VillageAdoption, v) },
			},
			Table[string]{
				SectionHead: SectionHead{Name: "thrustAreas", Header: "2.1 Priority thrust areas", HeaderRow: true},
				Columns:     columnsFrom(1, thrustAreaFields),
				Anchor:      1,
				Append:      func(r *nr, s string) { r.ThrustAreas = append(r.ThrustAreas, s) },
			},
		},
	},
	{
		Name: "Technical Achievements",
		Sections: []sectionSpec{
			Grid{
				SectionHead: SectionHead{Name: "oft", Header: "OFT (On Farm Trials)", HeaderRow: true},
				Rows: [][]*Column{
					{col("OFT Number Target"), col("OFT Number Achievement")},
					{col("OFT Farmers Target"), nil},
					{col("OFT Technologies Tested"), nil},
				},
			},
			Grid{
				SectionHead: SectionHead{Name: "fld", Header: "FLD (Frontline Demonstrations)", HeaderRow: true},
				Rows: [][]*Column{
					{col("FLD Number Target"), col("FLD Number Achievement")},
					{col("FLD Farmers Target"), nil},
					{col("FLD Technologies Demonstrated"), nil},
				},
			},
			Grid{
				SectionHead: SectionHead{Name: "training", Header: "Training", HeaderRow: true},
				Rows: [][]*Column{
					{col("Training Courses Target"), col("Training Courses Achievement")},
					{col("Training Participants Target"), col("Training Participants Achievement")},
				},
			},
			Grid{
				SectionHead: SectionHead{Name: "extension", Header: "Extension activities", HeaderRow: true},
				Rows: [][]*Column{
					{col("Extension Activities Target"), col("Extension Activities Achievement")},
					{col("Extension Participants Target"), col("Extension Participants Achievement")},
				},
			},
			Grid{
				SectionHead: SectionHead{Name: "seedProduction", Header: "Seed production (q)", HeaderRow: true},
				Rows:        [][]*Column{{col("Seed Production Target (q)"), col("Seed Production Achievement (q)")}},
			},
			Grid{
				SectionHead: SectionHead{Name: "plantingMaterial", Header: "Planting material (Lakh)", HeaderRow: true},
				Rows:        [][]*Column{{col("Planting Material Target (Lakh)"), col("Planting Material Achievement (Lakh)")}},
			},
		},
	},
	{
		Name: "OFT Details",
		Sections: []sectionSpec{
			Table[models.OftDetail]{
				SectionHead: SectionHead{Name: "details", Header: "OFT Details", HeaderRow: true},
				Columns:     columnsFrom(1, oftDetailFields),
				Anchor:      1,
				Append:      func(r *nr, o models.OftDetail) { r.OftDetails = append(r.OftDetails, o) },
			},
			Table[models.OftPerformance]{
				SectionHead: SectionHead{Name: "performance", Header: "OFT Performance Data", HeaderRow: true},
				Columns:     columnsFrom(0, oftPerformanceFields),
				Anchor:      0,
				Append:      func(r *nr, o models.OftPerformance) { r.OftPerformance = append(r.OftPerformance, o) },
			},
		},
	},
	{
		Name: "FLD Cereals & Pulses",
		Sections: []sectionSpec{
			demoTable("cereals", "Cereals", "cerealsDemo", func(r *nr) *[]models.Demonstration { return &r.CerealsDemo }),
			demoTable("pulses", "Pulses", "pulsesDemo", func(r *nr) *[]models.Demonstration { return &r.PulsesDemo }),
		},
	},
	{
		Name: "FLD Oilseeds & Others",
		Labels: []LabelBinding{
			labelContaining("Research papers", "Research Papers"),
			labelContaining("Bulletins", "Bulletins"),
			labelContaining("Popular articles", "Popular Articles"),
			labelContaining("Extension pamphlets", "Extension Pamphlets"),
			labelContaining("Technical reports", "Technical Reports"),
			labelContaining("Books published", "Books Published"),
			labelContaining("Dairy demonstrations", "Dairy Demonstrations"),
			labelContaining("Poultry demonstrations", "Poultry Demonstrations"),
			labelContaining("Goat", "Goat Sheep Demonstrations"),
		},
		Sections: []sectionSpec{
			demoTable("oilseeds", "Oilseeds", "oilseedsDemo", func(r *nr) *[]models.Demonstration { return &r.OilseedsDemo }),
		},
	},
}
