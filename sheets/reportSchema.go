package sheets

import "github.com/mmdatafocus/kvk_backend/models"

type nr = models.NewReport

var reportColumns = []Column{
	textField("KVK Name", "kvkName", func(r *nr) *string { return &r.KvkName }),
	textField("KVK Address", "kvkAddress", func(r *nr) *string { return &r.KvkAddress }),
	textField("KVK Telephone", "kvkTelephone", func(r *nr) *string { return &r.KvkTelephone }),
	textField("KVK Email", "kvkEmail", func(r *nr) *string { return &r.KvkEmail }),
	textField("KVK FAX", "kvkFax", func(r *nr) *string { return &r.KvkFax }),
	textField("Host Organization Name", "hostOrgName", func(r *nr) *string { return &r.HostOrgName }),
	textField("Host Organization Address", "hostOrgAddress", func(r *nr) *string { return &r.HostOrgAddress }),
	textField("Host Org Telephone", "hostOrgTelephone", func(r *nr) *string { return &r.HostOrgTelephone }),
	textField("Host Org Email", "hostOrgEmail", func(r *nr) *string { return &r.HostOrgEmail }),
	textField("Senior Scientist Name", "headName", func(r *nr) *string { return &r.HeadName }),
	textField("Senior Scientist Mobile", "headMobile", func(r *nr) *string { return &r.HeadMobile }),
	textField("Senior Scientist Email", "headEmail", func(r *nr) *string { return &r.HeadEmail }),
	optIntField("Year of Sanction", "sanctionYear", func(r *nr) **int { return &r.SanctionYear }),

	numField("Land Under Buildings (ha)", "landDetails.buildings", func(r *nr) *float64 { return &r.LandDetails.Buildings }),
	numField("Land Under Demo Units (ha)", "landDetails.demoUnits", func(r *nr) *float64 { return &r.LandDetails.DemoUnits }),
	numField("Land Under Crops (ha)", "landDetails.crops", func(r *nr) *float64 { return &r.LandDetails.Crops }),
	numField("Land Under Orchard (ha)", "landDetails.orchard", func(r *nr) *float64 { return &r.LandDetails.Orchard }),
	numField("Land Others (ha)", "landDetails.others", func(r *nr) *float64 { return &r.LandDetails.Others }),

	textField("Major Farming System", "majorFarmingSystem", func(r *nr) *string { return &r.MajorFarmingSystem }),
	textField("Agro-climatic Zone", "agroClimaticZone", func(r *nr) *string { return &r.AgroClimaticZone }),
	textField("Agro Ecological Situation", "agroEcologicalSituation", func(r *nr) *string { return &r.AgroEcologicalSituation }),
	textField("Soil Type", "soilType", func(r *nr) *string { return &r.SoilType }),
	textField("Crop Productivity", "cropProductivity", func(r *nr) *string { return &r.CropProductivity }),
	numField("Mean Temperature (°C)", "meanTemperature", func(r *nr) *float64 { return &r.MeanTemperature }),
	numField("Mean Rainfall (mm)", "meanRainfall", func(r *nr) *float64 { return &r.MeanRainfall }),
	numField("Mean Humidity (%)", "meanHumidity", func(r *nr) *float64 { return &r.MeanHumidity }),
	textField("Livestock Production", "livestockProduction", func(r *nr) *string { return &r.LivestockProduction }),

	intField("OFT Technologies Tested", "technicalAchievements.oft.technologiesTested", func(r *nr) *int { return &r.TechnicalAchievements.Oft.TechnologiesTested }),
	intField("OFT Number Target", "technicalAchievements.oft.numberTarget", func(r *nr) *int { return &r.TechnicalAchievements.Oft.NumberTarget }),
	intField("OFT Number Achievement", "technicalAchievements.oft.numberAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Oft.NumberAchievement }),
	intField("OFT Farmers Target", "technicalAchievements.oft.farmersTarget", func(r *nr) *int { return &r.TechnicalAchievements.Oft.FarmersTarget }),
	intField("FLD Technologies Demonstrated", "technicalAchievements.fld.technologiesDemonstrated", func(r *nr) *int { return &r.TechnicalAchievements.Fld.TechnologiesDemonstrated }),
	intField("FLD Number Target", "technicalAchievements.fld.numberTarget", func(r *nr) *int { return &r.TechnicalAchievements.Fld.NumberTarget }),
	intField("FLD Number Achievement", "technicalAchievements.fld.numberAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Fld.NumberAchievement }),
	intField("FLD Farmers Target", "technicalAchievements.fld.farmersTarget", func(r *nr) *int { return &r.TechnicalAchievements.Fld.FarmersTarget }),
	intField("Training Courses Target", "technicalAchievements.training.coursesTarget", func(r *nr) *int { return &r.TechnicalAchievements.Training.CoursesTarget }),
	intField("Training Courses Achievement", "technicalAchievements.training.coursesAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Training.CoursesAchievement }),
	intField("Training Participants Target", "technicalAchievements.training.participantsTarget", func(r *nr) *int { return &r.TechnicalAchievements.Training.ParticipantsTarget }),
	intField("Training Participants Achievement", "technicalAchievements.training.participantsAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Training.ParticipantsAchievement }),
	intField("Extension Activities Target", "technicalAchievements.extension.activitiesTarget", func(r *nr) *int { return &r.TechnicalAchievements.Extension.ActivitiesTarget }),
	intField("Extension Activities Achievement", "technicalAchievements.extension.activitiesAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Extension.ActivitiesAchievement }),
	intField("Extension Participants Target", "technicalAchievements.extension.participantsTarget", func(r *nr) *int { return &r.TechnicalAchievements.Extension.ParticipantsTarget }),
	intField("Extension Participants Achievement", "technicalAchievements.extension.participantsAchievement", func(r *nr) *int { return &r.TechnicalAchievements.Extension.ParticipantsAchievement }),
	numField("Seed Production Target (q)", "technicalAchievements.production.seedProductionTarget", func(r *nr) *float64 { return &r.TechnicalAchievements.Production.SeedProductionTarget }),
	numField("Seed Production Achievement (q)", "technicalAchievements.production.seedProductionAchievement", func(r *nr) *float64 { return &r.TechnicalAchievements.Production.SeedProductionAchievement }),
	numField("Planting Material Target (Lakh)", "technicalAchievements.production.plantingMaterialTarget", func(r *nr) *float64 { return &r.TechnicalAchievements.Production.PlantingMaterialTarget }),
	numField("Planting Material Achievement (Lakh)", "technicalAchievements.production.plantingMaterialAchievement", func(r *nr) *float64 { return &r.TechnicalAchievements.Production.PlantingMaterialAchievement }),

	intField("Research Papers", "publications.researchPapers", func(r *nr) *int { return &r.Publications.ResearchPapers }),
	intField("Bulletins", "publications.bulletins", func(r *nr) *int { return &r.Publications.Bulletins }),
	intField("Popular Articles", "publications.popularArticles", func(r *nr) *int { return &r.Publications.PopularArticles }),
	intField("Extension Pamphlets", "publications.extensionPamphlets", func(r *nr) *int { return &r.Publications.ExtensionPamphlets }),
	intField("Technical Reports", "publications.technicalReports", func(r *nr) *int { return &r.Publications.TechnicalReports }),
	intField("Books Published", "publications.booksPublished", func(r *nr) *int { return &r.Publications.BooksPublished }),

	intField("Dairy Demonstrations", "livestock.dairyDemonstrations", func(r *nr) *int { return &r.Livestock.DairyDemonstrations }),
	intField("Poultry Demonstrations", "livestock.poultryDemonstrations", func(r *nr) *int { return &r.Livestock.PoultryDemonstrations }),
	intField("Goat Sheep Demonstrations", "livestock.goatSheepDemonstrations", func(r *nr) *int { return &r.Livestock.GoatSheepDemonstrations }),

	textField("Major Achievements", "majorAchievements", func(r *nr) *string { return &r.MajorAchievements }),
	textField("Constraints Suggestions", "constraintsSuggestions", func(r *nr) *string { return &r.ConstraintsSuggestions }),
	textField("Report Prepared By", "reportPreparedBy", func(r *nr) *string { return &r.ReportPreparedBy }),
	dateField("Report Date", "reportDate", func(r *nr) *string { return &r.ReportDate }),
}

var staffFields = []Field[models.StaffMember]{
	textField("Position", "staff[].position", func(s *models.StaffMember) *string { return &s.Position }),
	textField("Name", "staff[].name", func(s *models.StaffMember) *string { return &s.Name }),
	textField("Designation", "staff[].designation", func(s *models.StaffMember) *string { return &s.Designation }),
	textField("Discipline", "staff[].discipline", func(s *models.StaffMember) *string { return &s.Discipline }),
	textField("Pay Scale", "staff[].payScale", func(s *models.StaffMember) *string { return &s.PayScale }),
	dateField("Joining Date", "staff[].joiningDate", func(s *models.StaffMember) *string { return &s.JoiningDate }),
	textField("Status", "staff[].status", func(s *models.StaffMember) *string { return &s.Status }),
	textField("Category", "staff[].category", func(s *models.StaffMember) *string { return &s.Category }),
}

var infrastructureFields = []Field[models.Infrastructure]{
	textField("Name", "infrastructure[].name", func(s *models.Infrastructure) *string { return &s.Name }),
	textField("Status", "infrastructure[].status", func(s *models.Infrastructure) *string { return &s.Status }),
	numField("Plinth Area", "infrastructure[].plinthArea", func(s *models.Infrastructure) *float64 { return &s.PlinthArea }),
	textField("Under Use", "infrastructure[].underUse", func(s *models.Infrastructure) *string { return &s.UnderUse }),
	textField("Funding Source", "infrastructure[].fundingSource", func(s *models.Infrastructure) *string { return &s.FundingSource }),
}

var vehicleFields = []Field[models.Vehicle]{
	textField("Type", "vehicles[].type", func(v *models.Vehicle) *string { return &v.Type }),
	intField("Year", "vehicles[].yearOfPurchase", func(v *models.Vehicle) *int { return &v.YearOfPurchase }),
	numField("Cost", "vehicles[].cost", func(v *models.Vehicle) *float64 { return &v.Cost }),
	numField("Km Run", "vehicles[].totalKmRun", func(v *models.Vehicle) *float64 { return &v.TotalKmRun }),
	textField("Status", "vehicles[].status", func(v *models.Vehicle) *string { return &v.Status }),
}

var equipmentFields = []Field[models.Equipment]{
	textField("Category", "equipment[].category", func(e *models.Equipment) *string { return &e.Category }),
	textField("Name", "equipment[].name", func(e *models.Equipment) *string { return &e.Name }),
	intField("Year", "equipment[].yearOfPurchase", func(e *models.Equipment) *int { return &e.YearOfPurchase }),
	numField("Cost", "equipment[].cost", func(e *models.Equipment) *float64 { return &e.Cost }),
	textField("Status", "equipment[].status", func(e *models.Equipment) *string { return &e.Status }),
	textField("Funding", "equipment[].fundingSource", func(e *models.Equipment) *string { return &e.FundingSource }),
}

var operationalAreaFields = []Field[models.OperationalArea]{
	textField("Taluk", "operationalAreas[].taluk", func(o *models.OperationalArea) *string { return &o.Taluk }),
	textField("Block", "operationalAreas[].block", func(o *models.OperationalArea) *string { return &o.Block }),
	textField("Villages", "operationalAreas[].villages", func(o *models.OperationalArea) *string { return &o.Villages }),
	textField("Major Crops", "operationalAreas[].majorCrops", func(o *models.OperationalArea) *string { return &o.MajorCrops }),
	textField("Problems", "operationalAreas[].problems", func(o *models.OperationalArea) *string { return &o.Problems }),
	textField("Thrust Areas", "operationalAreas[].thrustAreas", func(o *models.OperationalArea) *string { return &o.ThrustAreas }),
}

var villageFields = []Field[models.VillageAdoption]{
	textField("Name", "villageAdoption[].name", func(v *models.VillageAdoption) *string { return &v.Name }),
	textField("Block", "villageAdoption[].block", func(v *models.VillageAdoption) *string { return &v.Block }),
	textField("Action", "villageAdoption[].actionTaken", func(v *models.VillageAdoption) *string { return &v.ActionTaken }),
}

var thrustAreaFields = []Field[string]{
	textField("", "thrustAreas[]", func(s *string) *string { return s }),
}

func demoFields(path string) []Field[models.Demonstration] {
	return []Field[models.Demonstration]{
		textField("Crop", path+"[].crop", func(d *models.Demonstration) *string { return &d.Crop }),
		textField("Technology", path+"[].technologyDemonstrated", func(d *models.Demonstration) *string { return &d.TechnologyDemonstrated }),
		numField("Area", path+"[].area", func(d *models.Demonstration) *float64 { return &d.Area }),
		intField("Farmers", path+"[].numberOfFarmers", func(d *models.Demonstration) *int { return &d.NumberOfFarmers }),
		numField("Demo Yield", path+"[].demoYield", func(d *models.Demonstration) *float64 { return &d.DemoYield }),
		numField("Check Yield", path+"[].checkYield", func(d *models.Demonstration) *float64 { return &d.CheckYield }),
	}
}

func appendDemo(list func(r *nr) *[]models.Demonstration) func(r *nr, i int, d models.Demonstration) {
	return func(r *nr, _ int, d models.Demonstration) {
		d.RecomputeIncrease()
		*list(r) = append(*list(r), d)
	}
}

// ReportSchema drives the single-row import and the blank template.
var ReportSchema = Schema{
	Columns: reportColumns,
	Groups: []groupSpec{
		Group[models.StaffMember]{Prefix: "Staff", Max: 10, Anchor: "Name", Fields: staffFields,
			Append: func(r *nr, i int, s models.StaffMember) {
				s.SlNo = i
				r.Staff = append(r.Staff, s)
			}},
		Group[models.Infrastructure]{Prefix: "Infrastructure", Max: 5, Anchor: "Name", Fields: infrastructureFields,
			Append: func(r *nr, _ int, s models.Infrastructure) { r.Infra = append(r.Infra, s) }},
		Group[models.Vehicle]{Prefix: "Vehicle", Max: 3, Anchor: "Type", Fields: vehicleFields,
			Append: func(r *nr, _ int, v models.Vehicle) { r.Vehicles = append(r.Vehicles, v) }},
		Group[models.Equipment]{Prefix: "Equipment", Max: 5, Anchor: "Name", Fields: equipmentFields,
			Append: func(r *nr, _ int, e models.Equipment) { r.Equipment = append(r.Equipment, e) }},
		Group[models.OperationalArea]{Prefix: "Op Area", Max: 3, Anchor: "Taluk", Fields: operationalAreaFields,
			Append: func(r *nr, _ int, o models.OperationalArea) { r.OperationalAreas = append(r.OperationalAreas, o) }},
		Group[models.VillageAdoption]{Prefix: "Village", Max: 3, Anchor: "Name", Fields: villageFields,
			Append: func(r *nr, _ int, v models.VillageAdoption) { r.VillageAdoption = append(r.VillageAdoption, v) }},
		Group[string]{Prefix: "Thrust Area", Max: 5, Anchor: "", Fields: thrustAreaFields,
			Append: func(r *nr, _ int, s string) { r.ThrustAreas = append(r.ThrustAreas, s) }},
		Group[models.Demonstration]{Prefix: "Cereals Demo", Max: 3, Anchor: "Crop", Fields: demoFields("cerealsDemo"),
			Append: appendDemo(func(r *nr) *[]models.Demonstration { return &r.CerealsDemo })},
		Group[models.Demonstration]{Prefix: "Pulses Demo", Max: 3, Anchor: "Crop", Fields: demoFields("pulsesDemo"),
			Append: appendDemo(func(r *nr) *[]models.Demonstration { return &r.PulsesDemo })},
		Group[models.Demonstration]{Prefix: "Oilseeds Demo", Max: 3, Anchor: "Crop", Fields: demoFields("oilseedsDemo"),
			Append: appendDemo(func(r *nr) *[]models.Demonstration { return &r.OilseedsDemo })},
	},
}
