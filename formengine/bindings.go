package formengine

import (
	"github.com/mmdatafocus/kvk_backend/models"
)

type nr = models.NewReport

// Binding ties one scalar record path to the form input that edits it.
type Binding struct {
	Path     string
	Input    string
	Label    string
	Section  string
	Required bool
	accessor[nr]
}

func (b Binding) Kind() Kind { return b.kind }

// Get formats the bound field of r as input text.
func (b Binding) Get(r *models.NewReport) string { return b.format(r) }

// Set parses raw into the bound field of r.
func (b Binding) Set(r *models.NewReport, raw string) { b.assign(r, raw) }

const (
	sectionGeneral   = "General Information"
	sectionLand      = "Land Details"
	sectionDistrict  = "District Profile"
	sectionTechnical = "Technical Achievements"
	sectionOutput    = "Publications and Livestock"
	sectionSummary   = "Summary"
)

func bind(section, path, input, label string, a accessor[nr]) Binding {
	return Binding{Path: path, Input: input, Label: label, Section: section, accessor: a}
}

func required(b Binding) Binding {
	b.Required = true
	return b
}

// Bindings is the complete scalar table. Repeating rows live in RowTables.
var Bindings = []Binding{
	required(bind(sectionGeneral, "kvkName", "kvk_name", "KVK Name", textOf(func(r *nr) *string { return &r.KvkName }))),
	required(bind(sectionGeneral, "kvkAddress", "kvk_address", "KVK Address", longTextOf(func(r *nr) *string { return &r.KvkAddress }))),
	bind(sectionGeneral, "kvkTelephone", "kvk_telephone", "KVK Telephone", textOf(func(r *nr) *string { return &r.KvkTelephone })),
	bind(sectionGeneral, "kvkEmail", "kvk_email", "KVK Email", textOf(func(r *nr) *string { return &r.KvkEmail })),
	bind(sectionGeneral, "kvkFax", "kvk_fax", "KVK Fax", textOf(func(r *nr) *string { return &r.KvkFax })),
	required(bind(sectionGeneral, "hostOrgName", "host_org_name", "Host Organization Name", textOf(func(r *nr) *string { return &r.HostOrgName }))),
	bind(sectionGeneral, "hostOrgAddress", "host_org_address", "Host Organization Address", longTextOf(func(r *nr) *string { return &r.HostOrgAddress })),
	bind(sectionGeneral, "hostOrgTelephone", "host_org_telephone", "Host Organization Telephone", textOf(func(r *nr) *string { return &r.HostOrgTelephone })),
	bind(sectionGeneral, "hostOrgEmail", "host_org_email", "Host Organization Email", textOf(func(r *nr) *string { return &r.HostOrgEmail })),
	bind(sectionGeneral, "hostOrgFax", "host_org_fax", "Host Organization Fax", textOf(func(r *nr) *string { return &r.HostOrgFax })),
	required(bind(sectionGeneral, "headName", "head_name", "Head Name", textOf(func(r *nr) *string { return &r.HeadName }))),
	bind(sectionGeneral, "headMobile", "head_mobile", "Head Mobile", textOf(func(r *nr) *string { return &r.HeadMobile })),
	bind(sectionGeneral, "headEmail", "head_email", "Head Email", textOf(func(r *nr) *string { return &r.HeadEmail })),
	bind(sectionGeneral, "sanctionYear", "sanction_year", "Year of Sanction", optIntOf(func(r *nr) **int { return &r.SanctionYear })),
	required(bind(sectionGeneral, "reportDate", "report_date", "Report Date", dateOf(func(r *nr) *string { return &r.ReportDate }))),

	bind(sectionLand, "landDetails.buildings", "land_buildings", "Buildings (ha)", numOf(func(r *nr) *float64 { return &r.LandDetails.Buildings })),
	bind(sectionLand, "landDetails.demoUnits", "land_demo_units", "Demonstration Units (ha)", numOf(func(r *nr) *float64 { return &r.LandDetails.DemoUnits })),
	bind(sectionLand, "landDetails.crops", "land_crops", "Crops (ha)", numOf(func(r *nr) *float64 { return &r.LandDetails.Crops })),
	bind(sectionLand, "landDetails.orchard", "land_orchard", "Orchard (ha)", numOf(func(r *nr) *float64 { return &r.LandDetails.Orchard })),
	bind(sectionLand, "landDetails.others", "land_others", "Others (ha)", numOf(func(r *nr) *float64 { return &r.LandDetails.Others })),
	bind(sectionLand, "sacNotConductedReason", "sac_not_conducted_reason", "Reason SAC Meeting Not Conducted", longTextOf(func(r *nr) *string { return &r.SacNotConductedReason })),

	bind(sectionDistrict, "majorFarmingSystem", "major_farming_system", "Major Farming System", longTextOf(func(r *nr) *string { return &r.MajorFarmingSystem })),
	bind(sectionDistrict, "agroClimaticZone", "agro_climatic_zone", "Agro-climatic Zone", textOf(func(r *nr) *string { return &r.AgroClimaticZone })),
	bind(sectionDistrict, "agroEcologicalSituation", "agro_ecological_situation", "Agro-ecological Situation", longTextOf(func(r *nr) *string { return &r.AgroEcologicalSituation })),
	bind(sectionDistrict, "soilType", "soil_type", "Soil Type", textOf(func(r *nr) *string { return &r.SoilType })),
	bind(sectionDistrict, "cropProductivity", "crop_productivity", "Crop Productivity", longTextOf(func(r *nr) *string { return &r.CropProductivity })),
	bind(sectionDistrict, "meanTemperature", "mean_temperature", "Mean Temperature (°C)", numOf(func(r *nr) *float64 { return &r.MeanTemperature })),
	bind(sectionDistrict, "meanRainfall", "mean_rainfall", "Mean Rainfall (mm)", numOf(func(r *nr) *float64 { return &r.MeanRainfall })),
	bind(sectionDistrict, "meanHumidity", "mean_humidity", "Mean Humidity (%)", numOf(func(r *nr) *float64 { return &r.MeanHumidity })),
	bind(sectionDistrict, "livestockProduction", "livestock_production", "Livestock Production", longTextOf(func(r *nr) *string { return &r.LivestockProduction })),
	bind(sectionDistrict, "thrustAreas", "thrust_areas", "Thrust Areas (one per line)", linesOf(func(r *nr) *[]string { return &r.ThrustAreas })),

	bind(sectionTechnical, "technicalAchievements.oft.technologiesTested", "oft_technologies_tested", "OFT Technologies Tested", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Oft.TechnologiesTested })),
	bind(sectionTechnical, "technicalAchievements.oft.numberTarget", "oft_number_target", "OFT Number Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Oft.NumberTarget })),
	bind(sectionTechnical, "technicalAchievements.oft.numberAchievement", "oft_number_achievement", "OFT Number Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Oft.NumberAchievement })),
	bind(sectionTechnical, "technicalAchievements.oft.farmersTarget", "oft_farmers_target", "OFT Farmers Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Oft.FarmersTarget })),
	bind(sectionTechnical, "technicalAchievements.fld.technologiesDemonstrated", "fld_technologies_demonstrated", "FLD Technologies Demonstrated", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Fld.TechnologiesDemonstrated })),
	bind(sectionTechnical, "technicalAchievements.fld.numberTarget", "fld_number_target", "FLD Number Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Fld.NumberTarget })),
	bind(sectionTechnical, "technicalAchievements.fld.numberAchievement", "fld_number_achievement", "FLD Number Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Fld.NumberAchievement })),
	bind(sectionTechnical, "technicalAchievements.fld.farmersTarget", "fld_farmers_target", "FLD Farmers Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Fld.FarmersTarget })),
	bind(sectionTechnical, "technicalAchievements.training.coursesTarget", "training_courses_target", "Training Courses Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Training.CoursesTarget })),
	bind(sectionTechnical, "technicalAchievements.training.coursesAchievement", "training_courses_achievement", "Training Courses Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Training.CoursesAchievement })),
	bind(sectionTechnical, "technicalAchievements.training.participantsTarget", "training_participants_target", "Training Participants Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Training.ParticipantsTarget })),
	bind(sectionTechnical, "technicalAchievements.training.participantsAchievement", "training_participants_achievement", "Training Participants Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Training.ParticipantsAchievement })),
	bind(sectionTechnical, "technicalAchievements.extension.activitiesTarget", "extension_activities_target", "Extension Activities Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Extension.ActivitiesTarget })),
	bind(sectionTechnical, "technicalAchievements.extension.activitiesAchievement", "extension_activities_achievement", "Extension Activities Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Extension.ActivitiesAchievement })),
	bind(sectionTechnical, "technicalAchievements.extension.participantsTarget", "extension_participants_target", "Extension Participants Target", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Extension.ParticipantsTarget })),
	bind(sectionTechnical, "technicalAchievements.extension.participantsAchievement", "extension_participants_achievement", "Extension Participants Achievement", intOf(func(r *nr) *int { return &r.TechnicalAchievements.Extension.ParticipantsAchievement })),
	bind(sectionTechnical, "technicalAchievements.production.seedProductionTarget", "seed_production_target", "Seed Production Target (q)", numOf(func(r *nr) *float64 { return &r.TechnicalAchievements.Production.SeedProductionTarget })),
	bind(sectionTechnical, "technicalAchievements.production.seedProductionAchievement", "seed_production_achievement", "Seed Production Achievement (q)", numOf(func(r *nr) *float64 { return &r.TechnicalAchievements.Production.SeedProductionAchievement })),
	bind(sectionTechnical, "technicalAchievements.production.plantingMaterialTarget", "planting_material_target", "Planting Material Target", numOf(func(r *nr) *float64 { return &r.TechnicalAchievements.Production.PlantingMaterialTarget })),
	bind(sectionTechnical, "technicalAchievements.production.plantingMaterialAchievement", "planting_material_achievement", "Planting Material Achievement", numOf(func(r *nr) *float64 { return &r.TechnicalAchievements.Production.PlantingMaterialAchievement })),

	bind(sectionOutput, "publications.researchPapers", "research_papers", "Research Papers", intOf(func(r *nr) *int { return &r.Publications.ResearchPapers })),
	bind(sectionOutput, "publications.bulletins", "bulletins", "Bulletins", intOf(func(r *nr) *int { return &r.Publications.Bulletins })),
	bind(sectionOutput, "publications.popularArticles", "popular_articles", "Popular Articles", intOf(func(r *nr) *int { return &r.Publications.PopularArticles })),
	bind(sectionOutput, "publications.extensionPamphlets", "extension_pamphlets", "Extension Pamphlets", intOf(func(r *nr) *int { return &r.Publications.ExtensionPamphlets })),
	bind(sectionOutput, "publications.technicalReports", "technical_reports", "Technical Reports", intOf(func(r *nr) *int { return &r.Publications.TechnicalReports })),
	bind(sectionOutput, "publications.booksPublished", "books_published", "Books Published", intOf(func(r *nr) *int { return &r.Publications.BooksPublished })),
	bind(sectionOutput, "livestock.dairyDemonstrations", "dairy_demonstrations", "Dairy Demonstrations", intOf(func(r *nr) *int { return &r.Livestock.DairyDemonstrations })),
	bind(sectionOutput, "livestock.poultryDemonstrations", "poultry_demonstrations", "Poultry Demonstrations", intOf(func(r *nr) *int { return &r.Livestock.PoultryDemonstrations })),
	bind(sectionOutput, "livestock.goatSheepDemonstrations", "goat_sheep_demonstrations", "Goat/Sheep Demonstrations", intOf(func(r *nr) *int { return &r.Livestock.GoatSheepDemonstrations })),

	bind(sectionSummary, "majorAchievements", "major_achievements", "Major Achievements", longTextOf(func(r *nr) *string { return &r.MajorAchievements })),
	bind(sectionSummary, "constraintsSuggestions", "constraints_suggestions", "Constraints and Suggestions", longTextOf(func(r *nr) *string { return &r.ConstraintsSuggestions })),
	required(bind(sectionSummary, "reportPreparedBy", "report_prepared_by", "Report Prepared By", textOf(func(r *nr) *string { return &r.ReportPreparedBy }))),
}

var (
	byPath  = map[string]*Binding{}
	byInput = map[string]*Binding{}
)

func init() {
	for i := range Bindings {
		b := &Bindings[i]
		if _, dup := byPath[b.Path]; dup {
			panic("formengine: duplicate binding path " + b.Path)
		}
		if _, dup := byInput[b.Input]; dup {
			panic("formengine: duplicate binding input " + b.Input)
		}
		byPath[b.Path] = b
		byInput[b.Input] = b
	}
}

// LookupByPath finds the binding for a record path such as technicalAchievements.oft.farmersTarget.
func LookupByPath(path string) (*Binding, bool) {
	b, ok := byPath[path]
	return b, ok
}

// LookupByInput finds the binding for a scalar input identifier such as oft_farmers_target.
func LookupByInput(input string) (*Binding, bool) {
	b, ok := byInput[input]
	return b, ok
}
