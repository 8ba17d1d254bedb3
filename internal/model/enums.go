package model

// Enums are persisted as their canonical display strings, not numeric
// codes. Parse functions never fail: an unrecognized stored value decodes
// to the documented fallback for that enum, so legacy or hand-edited rows
// still load.

// HouseholdType distinguishes urban and rural registration.
type HouseholdType string

const (
	HouseholdUrban HouseholdType = "城镇户口"
	HouseholdRural HouseholdType = "农村户口"
)

// ParseHouseholdType decodes a stored household type. Unrecognized values
// fall back to urban.
func ParseHouseholdType(s string) HouseholdType {
	if s == string(HouseholdRural) {
		return HouseholdRural
	}
	return HouseholdUrban
}

// Relationship is a member's relation to the household head. Nothing
// enforces that a household has exactly one head; zero or several are
// accepted, matching the data this system has always stored.
type Relationship string

const (
	RelationshipHead   Relationship = "户主"
	RelationshipSpouse Relationship = "配偶"
	RelationshipChild  Relationship = "子女"
	RelationshipParent Relationship = "父母"
	RelationshipOther  Relationship = "其他"
)

// ParseRelationship decodes a stored relationship. Unrecognized values
// fall back to other.
func ParseRelationship(s string) Relationship {
	switch Relationship(s) {
	case RelationshipHead, RelationshipSpouse, RelationshipChild, RelationshipParent:
		return Relationship(s)
	default:
		return RelationshipOther
	}
}

type Gender string

const (
	GenderMale   Gender = "男"
	GenderFemale Gender = "女"
)

// ParseGender decodes a stored gender. Unrecognized values fall back to
// male.
func ParseGender(s string) Gender {
	if s == string(GenderFemale) {
		return GenderFemale
	}
	return GenderMale
}

type Education string

const (
	EducationPrimary      Education = "小学"
	EducationMiddleSchool Education = "初中"
	EducationHighSchool   Education = "高中"
	EducationCollege      Education = "大专"
	EducationUniversity   Education = "本科"
	EducationGraduate     Education = "研究生"
	EducationOther        Education = "其他"
)

// ParseEducation decodes a stored education level. Unrecognized values
// fall back to other.
func ParseEducation(s string) Education {
	switch Education(s) {
	case EducationPrimary, EducationMiddleSchool, EducationHighSchool,
		EducationCollege, EducationUniversity, EducationGraduate:
		return Education(s)
	default:
		return EducationOther
	}
}
