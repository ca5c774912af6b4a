// Package candidate holds the candidate profile data model and its
// validation.
package candidate

import "strings"

// Field identifies one attribute of a candidate profile. Fields are declared
// in the order they are reported and fed to the classifier.
type Field int

const (
	FieldCity Field = iota
	FieldCityDevelopmentIndex
	FieldGender
	FieldRelevantExperience
	FieldEnrolledUniversity
	FieldEducationLevel
	FieldMajorDiscipline
	FieldExperience
	FieldCompanySize
	FieldCompanyType
	FieldLastNewJob
	FieldTrainingHours
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindNumber
	kindChoice
)

type fieldSpec struct {
	display string
	column  string
	kind    fieldKind
	options []string
}

var fields = [...]fieldSpec{
	FieldCity:                 {display: "City", column: "city", kind: kindText},
	FieldCityDevelopmentIndex: {display: "City Development Index", column: "city_development_index", kind: kindNumber},
	FieldGender: {
		display: "Gender", column: "gender", kind: kindChoice,
		options: []string{"Male", "Female", "Other", "Unknown"},
	},
	FieldRelevantExperience: {
		display: "Relevant Experience", column: "relevent_experience", kind: kindChoice,
		options: []string{"Has relevent experience", "No relevent experience"},
	},
	FieldEnrolledUniversity: {
		display: "Enrolled University", column: "enrolled_university", kind: kindChoice,
		options: []string{"no_enrollment", "Full time course", "Part time course", "Unknown"},
	},
	FieldEducationLevel: {
		display: "Education Level", column: "education_level", kind: kindChoice,
		options: []string{"Primary School", "High School", "Graduate", "Masters", "Phd", "Unknown"},
	},
	FieldMajorDiscipline: {
		display: "Major Discipline", column: "major_discipline", kind: kindChoice,
		options: []string{"STEM", "Business Degree", "Arts", "Humanities", "Other", "Unknown"},
	},
	FieldExperience: {display: "Experience", column: "experience", kind: kindText},
	FieldCompanySize: {
		display: "Company Size", column: "company_size", kind: kindChoice,
		options: []string{"<10", "10-49", "50-99", "100-500", "500-999", "1000-4999", "5000-9999", "10000+", "Unknown"},
	},
	FieldCompanyType: {
		display: "Company Type", column: "company_type", kind: kindChoice,
		options: []string{"Pvt Ltd", "Funded Startup", "Public Sector", "NGO", "Other", "Unknown"},
	},
	FieldLastNewJob: {
		display: "Last New Job", column: "last_new_job", kind: kindChoice,
		options: []string{"never", "1", "2", "3", "4", ">4", "Unknown"},
	},
	FieldTrainingHours: {display: "Training Hours", column: "training_hours", kind: kindNumber},
}

// Fields returns every profile field in declaration order.
func Fields() []Field {
	out := make([]Field, len(fields))
	for i := range fields {
		out[i] = Field(i)
	}
	return out
}

// DisplayName is the human readable name used in error reports.
func (f Field) DisplayName() string { return fields[f].display }

// Column is the dataset and model column name of the field.
func (f Field) Column() string { return fields[f].column }

// IsChoice reports whether the field is drawn from a fixed option set.
func (f Field) IsChoice() bool { return fields[f].kind == kindChoice }

// IsNumeric reports whether the field is numeric text.
func (f Field) IsNumeric() bool { return fields[f].kind == kindNumber }

// Options returns the allowed values of a choice field.
func (f Field) Options() []string {
	return append([]string(nil), fields[f].options...)
}

func (f Field) allows(value string) bool {
	for _, option := range fields[f].options {
		if option == value {
			return true
		}
	}
	return false
}

// Choice is the value of an enumerated field. The zero Choice is unselected,
// which no option value can collide with.
type Choice struct {
	Value string
	Set   bool
}

// Select returns a selected Choice. Blank values stay unselected.
func Select(value string) Choice {
	value = strings.TrimSpace(value)
	if value == "" {
		return Choice{}
	}
	return Choice{Value: value, Set: true}
}

// Profile is one candidate's raw attributes as entered.
type Profile struct {
	City                 string `mapstructure:"city"`
	CityDevelopmentIndex string `mapstructure:"city_development_index"`
	Gender               Choice `mapstructure:"gender"`
	RelevantExperience   Choice `mapstructure:"relevent_experience"`
	EnrolledUniversity   Choice `mapstructure:"enrolled_university"`
	EducationLevel       Choice `mapstructure:"education_level"`
	MajorDiscipline      Choice `mapstructure:"major_discipline"`
	Experience           string `mapstructure:"experience"`
	CompanySize          Choice `mapstructure:"company_size"`
	CompanyType          Choice `mapstructure:"company_type"`
	LastNewJob           Choice `mapstructure:"last_new_job"`
	TrainingHours        string `mapstructure:"training_hours"`
}

func (p *Profile) text(f Field) string {
	switch f {
	case FieldCity:
		return p.City
	case FieldCityDevelopmentIndex:
		return p.CityDevelopmentIndex
	case FieldExperience:
		return p.Experience
	case FieldTrainingHours:
		return p.TrainingHours
	default:
		return ""
	}
}

func (p *Profile) choice(f Field) Choice {
	switch f {
	case FieldGender:
		return p.Gender
	case FieldRelevantExperience:
		return p.RelevantExperience
	case FieldEnrolledUniversity:
		return p.EnrolledUniversity
	case FieldEducationLevel:
		return p.EducationLevel
	case FieldMajorDiscipline:
		return p.MajorDiscipline
	case FieldCompanySize:
		return p.CompanySize
	case FieldCompanyType:
		return p.CompanyType
	case FieldLastNewJob:
		return p.LastNewJob
	default:
		return Choice{}
	}
}

// Validated is a profile that passed validation. It is comparable and can be
// used as a map key.
type Validated struct {
	City                 string
	CityDevelopmentIndex float64
	Gender               string
	RelevantExperience   string
	EnrolledUniversity   string
	EducationLevel       string
	MajorDiscipline      string
	Experience           string
	CompanySize          string
	CompanyType          string
	LastNewJob           string
	TrainingHours        float64
}

// Category returns the value of a text or choice field.
func (v *Validated) Category(f Field) string {
	switch f {
	case FieldCity:
		return v.City
	case FieldGender:
		return v.Gender
	case FieldRelevantExperience:
		return v.RelevantExperience
	case FieldEnrolledUniversity:
		return v.EnrolledUniversity
	case FieldEducationLevel:
		return v.EducationLevel
	case FieldMajorDiscipline:
		return v.MajorDiscipline
	case FieldExperience:
		return v.Experience
	case FieldCompanySize:
		return v.CompanySize
	case FieldCompanyType:
		return v.CompanyType
	case FieldLastNewJob:
		return v.LastNewJob
	default:
		return ""
	}
}

// Number returns the value of a numeric field.
func (v *Validated) Number(f Field) float64 {
	switch f {
	case FieldCityDevelopmentIndex:
		return v.CityDevelopmentIndex
	case FieldTrainingHours:
		return v.TrainingHours
	default:
		return 0
	}
}
