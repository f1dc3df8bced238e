package models

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusSubmitted ReportStatus = "submitted"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusApproved  ReportStatus = "approved"
)

func (s ReportStatus) IsValid() bool {
	switch s {
	case ReportStatusDraft, ReportStatusSubmitted, ReportStatusReviewed, ReportStatusApproved:
		return true
	}
	return false
}

type StaffMember struct {
	SlNo        int    `json:"slNo"`
	Position    string `json:"position"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Discipline  string `json:"discipline"`
	PayScale    string `json:"payScale"`
	JoiningDate string `json:"joiningDate"`
	Status      string `json:"status"`
	Category    string `json:"category"`
}

type Infrastructure struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"`
	PlinthArea    float64 `json:"plinthArea"`
	UnderUse      string  `json:"underUse"`
	FundingSource string  `json:"fundingSource"`
}

type Vehicle struct {
	Type           string  `json:"type"`
	YearOfPurchase int     `json:"yearOfPurchase"`
	Cost           float64 `json:"cost"`
	TotalKmRun     float64 `json:"totalKmRun"`
	Status         string  `json:"status"`
}

type Equipment struct {
	Category       string  `json:"category"`
	Name           string  `json:"name"`
	YearOfPurchase int     `json:"yearOfPurchase"`
	Cost           float64 `json:"cost"`
	Status         string  `json:"status"`
	FundingSource  string  `json:"fundingSource"`
}

type SacMeeting struct {
	Date            string `json:"date"`
	Participants    int    `json:"participants"`
	Recommendations string `json:"recommendations"`
	ActionTaken     string `json:"actionTaken"`
}

type OperationalArea struct {
	Taluk       string `json:"taluk"`
	Block       string `json:"block"`
	Villages    string `json:"villages"`
	MajorCrops  string `json:"majorCrops"`
	Problems    string `json:"problems"`
	ThrustAreas string `json:"thrustAreas"`
}

type VillageAdoption struct {
	Name        string `json:"name"`
	Block       string `json:"block"`
	ActionTaken string `json:"actionTaken"`
}

type OftDetail struct {
	Title                 string `json:"title"`
	ProblemDiagnosed      string `json:"problemDiagnosed"`
	TechnologySelected    string `json:"technologySelected"`
	Source                string `json:"source"`
	ProductionSystem      string `json:"productionSystem"`
	PerformanceIndicators string `json:"performanceIndicators"`
}

type OftPerformance struct {
	TechnologyOption  string  `json:"technologyOption"`
	NumberOfTrials    int     `json:"numberOfTrials"`
	Yield             float64 `json:"yield"`
	CostOfCultivation float64 `json:"costOfCultivation"`
	GrossReturn       float64 `json:"grossReturn"`
	NetReturn         float64 `json:"netReturn"`
	BcRatio           float64 `json:"bcRatio"`
}

// Demonstration is one frontline demonstration row (cereals, pulses or oilseeds).
type Demonstration struct {
	Crop                   string  `json:"crop"`
	TechnologyDemonstrated string  `json:"technologyDemonstrated"`
	Area                   float64 `json:"area"`
	NumberOfFarmers        int     `json:"numberOfFarmers"`
	DemoYield              float64 `json:"demoYield"`
	CheckYield             float64 `json:"checkYield"`
	PercentageIncrease     float64 `json:"percentageIncrease"`
}

// RecomputeIncrease overwrites PercentageIncrease when both yields are positive.
func (d *Demonstration) RecomputeIncrease() {
	if d.DemoYield > 0 && d.CheckYield > 0 {
		d.PercentageIncrease = (d.DemoYield - d.CheckYield) / d.CheckYield * 100
	}
}

type LandDetails struct {
	Buildings float64 `json:"buildings"`
	DemoUnits float64 `json:"demoUnits"`
	Crops     float64 `json:"crops"`
	Orchard   float64 `json:"orchard"`
	Others    float64 `json:"others"`
}

func (l LandDetails) Total() float64 {
	return l.Buildings + l.DemoUnits + l.Crops + l.Orchard + l.Others
}

type OftTargets struct {
	TechnologiesTested int `json:"technologiesTested"`
	NumberTarget       int `json:"numberTarget"`
	NumberAchievement  int `json:"numberAchievement"`
	FarmersTarget      int `json:"farmersTarget"`
}

type FldTargets struct {
	TechnologiesDemonstrated int `json:"technologiesDemonstrated"`
	NumberTarget             int `json:"numberTarget"`
	NumberAchievement        int `json:"numberAchievement"`
	FarmersTarget            int `json:"farmersTarget"`
}

type TrainingTargets struct {
	CoursesTarget           int `json:"coursesTarget"`
	CoursesAchievement      int `json:"coursesAchievement"`
	ParticipantsTarget      int `json:"participantsTarget"`
	ParticipantsAchievement int `json:"participantsAchievement"`
}

type ExtensionTargets struct {
	ActivitiesTarget        int `json:"activitiesTarget"`
	ActivitiesAchievement   int `json:"activitiesAchievement"`
	ParticipantsTarget      int `json:"participantsTarget"`
	ParticipantsAchievement int `json:"participantsAchievement"`
}

type ProductionTargets struct {
	SeedProductionTarget        float64 `json:"seedProductionTarget"`
	SeedProductionAchievement   float64 `json:"seedProductionAchievement"`
	PlantingMaterialTarget      float64 `json:"plantingMaterialTarget"`
	PlantingMaterialAchievement float64 `json:"plantingMaterialAchievement"`
}

// TechnicalAchievements is stored as prefixed columns (oft_number_target, ...) so dashboards can SUM them.
type TechnicalAchievements struct {
	Oft        OftTargets        `gorm:"embedded;embeddedPrefix:oft_" json:"oft"`
	Fld        FldTargets        `gorm:"embedded;embeddedPrefix:fld_" json:"fld"`
	Training   TrainingTargets   `gorm:"embedded;embeddedPrefix:training_" json:"training"`
	Extension  ExtensionTargets  `gorm:"embedded;embeddedPrefix:extension_" json:"extension"`
	Production ProductionTargets `gorm:"embedded;embeddedPrefix:production_" json:"production"`
}

type Publications struct {
	ResearchPapers     int `json:"researchPapers"`
	Bulletins          int `json:"bulletins"`
	PopularArticles    int `json:"popularArticles"`
	ExtensionPamphlets int `json:"extensionPamphlets"`
	TechnicalReports   int `json:"technicalReports"`
	BooksPublished     int `json:"booksPublished"`
}

type Livestock struct {
	DairyDemonstrations     int `json:"dairyDemonstrations"`
	PoultryDemonstrations   int `json:"poultryDemonstrations"`
	GoatSheepDemonstrations int `json:"goatSheepDemonstrations"`
}

type Attachment struct {
	Filename      string    `json:"filename"`
	OriginalName  string    `json:"originalName"`
	Path          string    `json:"path"`
	URL           string    `json:"url,omitempty"`
	Mimetype      string    `json:"mimetype"`
	Size          int64     `json:"size"`
	ThumbnailPath string    `json:"thumbnailPath,omitempty"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// ReportContent is the authored document, shared by the stored Report and the NewReport input.
type ReportContent struct {
	KvkName          string `gorm:"size:100;not null;index" json:"kvkName" validate:"required,max=100"`
	KvkAddress       string `gorm:"type:text" json:"kvkAddress" validate:"required"`
	KvkTelephone     string `gorm:"size:50" json:"kvkTelephone" validate:"omitempty,phone"`
	KvkEmail         string `gorm:"size:100" json:"kvkEmail" validate:"omitempty,email"`
	KvkFax           string `gorm:"size:50" json:"kvkFax"`
	HostOrgName      string `gorm:"size:255;not null" json:"hostOrgName" validate:"required"`
	HostOrgAddress   string `gorm:"type:text" json:"hostOrgAddress"`
	HostOrgTelephone string `gorm:"size:50" json:"hostOrgTelephone" validate:"omitempty,phone"`
	HostOrgEmail     string `gorm:"size:100" json:"hostOrgEmail" validate:"omitempty,email"`
	HostOrgFax       string `gorm:"size:50" json:"hostOrgFax"`
	HeadName         string `gorm:"size:255;not null" json:"headName" validate:"required"`
	HeadMobile       string `gorm:"size:50" json:"headMobile" validate:"omitempty,phone"`
	HeadEmail        string `gorm:"size:100" json:"headEmail" validate:"omitempty,email"`
	SanctionYear     *int   `json:"sanctionYear" validate:"omitempty,min=1900,max=2100"`

	Staff       []StaffMember    `gorm:"serializer:json;type:text" json:"staff"`
	LandDetails LandDetails      `gorm:"embedded;embeddedPrefix:land_" json:"landDetails"`
	Infra       []Infrastructure `gorm:"column:infrastructure;serializer:json;type:text" json:"infrastructure"`
	Vehicles    []Vehicle        `gorm:"serializer:json;type:text" json:"vehicles"`
	Equipment   []Equipment      `gorm:"serializer:json;type:text" json:"equipment"`

	SacMeetings           []SacMeeting `gorm:"serializer:json;type:text" json:"sacMeetings"`
	SacNotConductedReason string       `gorm:"type:text" json:"sacNotConductedReason"`

	MajorFarmingSystem      string  `gorm:"type:text" json:"majorFarmingSystem"`
	AgroClimaticZone        string  `gorm:"size:255" json:"agroClimaticZone"`
	AgroEcologicalSituation string  `gorm:"type:text" json:"agroEcologicalSituation"`
	SoilType                string  `gorm:"size:255" json:"soilType"`
	CropProductivity        string  `gorm:"type:text" json:"cropProductivity"`
	MeanTemperature         float64 `json:"meanTemperature"`
	MeanRainfall            float64 `json:"meanRainfall"`
	MeanHumidity            float64 `json:"meanHumidity"`
	LivestockProduction     string  `gorm:"type:text" json:"livestockProduction"`

	OperationalAreas []OperationalArea `gorm:"serializer:json;type:text" json:"operationalAreas"`
	VillageAdoption  []VillageAdoption `gorm:"serializer:json;type:text" json:"villageAdoption"`
	ThrustAreas      []string          `gorm:"serializer:json;type:text" json:"thrustAreas"`

	TechnicalAchievements TechnicalAchievements `gorm:"embedded" json:"technicalAchievements"`
	OftDetails            []OftDetail           `gorm:"serializer:json;type:text" json:"oftDetails"`
	OftPerformance        []OftPerformance      `gorm:"serializer:json;type:text" json:"oftPerformance"`
	Publications          Publications          `gorm:"embedded;embeddedPrefix:pub_" json:"publications"`

	CerealsDemo  []Demonstration `gorm:"serializer:json;type:text" json:"cerealsDemo"`
	PulsesDemo   []Demonstration `gorm:"serializer:json;type:text" json:"pulsesDemo"`
	OilseedsDemo []Demonstration `gorm:"serializer:json;type:text" json:"oilseedsDemo"`
	Livestock    Livestock       `gorm:"embedded;embeddedPrefix:livestock_" json:"livestock"`

	MajorAchievements      string `gorm:"type:text" json:"majorAchievements"`
	ConstraintsSuggestions string `gorm:"type:text" json:"constraintsSuggestions"`
	ReportPreparedBy       string `gorm:"size:255;not null" json:"reportPreparedBy" validate:"required"`
}

type Report struct {
	ID int `gorm:"primary_key" json:"id"`
	ReportContent
	ReportDate time.Time    `gorm:"not null;index" json:"reportDate"`
	Status     ReportStatus `gorm:"size:20;not null;default:draft;index" json:"status"`

	SubmittedBy    int        `gorm:"not null;index:idx_reports_owner_created,priority:1" json:"submittedBy"`
	ReviewedBy     *int       `json:"reviewedBy"`
	ReviewedAt     *time.Time `json:"reviewedAt"`
	ReviewComments string     `gorm:"type:text" json:"reviewComments"`

	Attachments []Attachment `gorm:"serializer:json;type:text" json:"attachments"`
	Version     int          `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time    `gorm:"autoCreateTime;index:idx_reports_owner_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`

	SubmittedByUser *UserSummary `gorm:"-" json:"submittedByUser,omitempty"`
	ReviewedByUser  *UserSummary `gorm:"-" json:"reviewedByUser,omitempty"`
}

// NewReport is the create/update payload.
type NewReport struct {
	ReportContent
	ReportDate string       `json:"reportDate" validate:"required,isodate"`
	Status     ReportStatus `json:"status,omitempty"`
	Version    *int         `json:"version,omitempty"`
}

// BeforeSave keeps derived demonstration fields consistent on every write.
func (r *Report) BeforeSave(tx *gorm.DB) error {
	r.RecomputeDerived()
	return nil
}

func (r *Report) AfterFind(tx *gorm.DB) error {
	r.normalize()
	return nil
}

// RecomputeDerived refreshes percentageIncrease on every demonstration row.
func (c *ReportContent) RecomputeDerived() {
	for _, rows := range [][]Demonstration{c.CerealsDemo, c.PulsesDemo, c.OilseedsDemo} {
		for i := range rows {
			rows[i].RecomputeIncrease()
		}
	}
}

func (r *Report) TotalLand() float64 {
	return r.LandDetails.Total()
}

func (r Report) MarshalJSON() ([]byte, error) {
	type reportAlias Report
	r.normalize()
	return json.Marshal(struct {
		reportAlias
		TotalLand float64 `json:"totalLand"`
	}{reportAlias(r), r.TotalLand()})
}

// normalize replaces nil sub-tables with empty ones so clients always get arrays.
func (r *Report) normalize() {
	r.ReportContent.normalize()
	if r.Attachments == nil {
		r.Attachments = []Attachment{}
	}
}

func (c *ReportContent) normalize() {
	if c.Staff == nil {
		c.Staff = []StaffMember{}
	}
	if c.Infra == nil {
		c.Infra = []Infrastructure{}
	}
	if c.Vehicles == nil {
		c.Vehicles = []Vehicle{}
	}
	if c.Equipment == nil {
		c.Equipment = []Equipment{}
	}
	if c.SacMeetings == nil {
		c.SacMeetings = []SacMeeting{}
	}
	if c.OperationalAreas == nil {
		c.OperationalAreas = []OperationalArea{}
	}
	if c.VillageAdoption == nil {
		c.VillageAdoption = []VillageAdoption{}
	}
	if c.ThrustAreas == nil {
		c.ThrustAreas = []string{}
	}
	if c.OftDetails == nil {
		c.OftDetails = []OftDetail{}
	}
	if c.OftPerformance == nil {
		c.OftPerformance = []OftPerformance{}
	}
	if c.CerealsDemo == nil {
		c.CerealsDemo = []Demonstration{}
	}
	if c.PulsesDemo == nil {
		c.PulsesDemo = []Demonstration{}
	}
	if c.OilseedsDemo == nil {
		c.OilseedsDemo = []Demonstration{}
	}
}

// TrimStrings trims the top-level text fields the way request sanitisation does.
func (c *ReportContent) TrimStrings() {
	for _, p := range []*string{
		&c.KvkName, &c.KvkAddress, &c.KvkTelephone, &c.KvkEmail, &c.KvkFax,
		&c.HostOrgName, &c.HostOrgAddress, &c.HostOrgTelephone, &c.HostOrgEmail, &c.HostOrgFax,
		&c.HeadName, &c.HeadMobile, &c.HeadEmail, &c.SacNotConductedReason,
		&c.MajorFarmingSystem, &c.AgroClimaticZone, &c.AgroEcologicalSituation, &c.SoilType,
		&c.CropProductivity, &c.LivestockProduction, &c.MajorAchievements,
		&c.ConstraintsSuggestions, &c.ReportPreparedBy,
	} {
		*p = strings.TrimSpace(*p)
	}
}
