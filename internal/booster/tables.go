package booster

import "fmt"

// Tables is the static phrase configuration for the booster engine. It is
// built once at startup, validated, and shared read-only across requests.
type Tables struct {
	// A document can only be OFFICIAL if one of these appears in its text.
	MandatoryPhrase    string
	MandatoryPhraseAlt string

	// HIGH tier phrase categories.
	HighFaculty         []string
	HighDegreeProgramme []string
	HighDepartment      []string
	CourseCodesCSU      []string // HIGH-tier course-code whitelist.
	HighOfficialMarkers []string

	// MEDIUM tier phrase categories.
	MediumFullAddress      []string
	CourseCodesOther       []string // MEDIUM-tier course codes.
	MediumAcademicTerms    []string
	MediumDocumentTypes    []string
	MediumStaffAffiliation []string

	// LOW tier phrase categories.
	LowGeneralFaculties  []string
	LowGeneralProgrammes []string

	// Full code list scanned for majority ("course catalog") detection.
	AllCourseCodes []string

	BaseConfidence    float64
	HighIncrement     float64
	MediumIncrement   float64
	LowIncrement      float64
	MajorityThreshold float64 // Fraction of AllCourseCodes that flags a catalog.
}

// Validate reports whether the tables are usable. A broken configuration is
// fatal at startup; the engine cannot produce a meaningful score without it.
func (t Tables) Validate() error {
	if t.MandatoryPhrase == "" {
		return fmt.Errorf("mandatory phrase is required")
	}
	if len(t.AllCourseCodes) == 0 {
		return fmt.Errorf("course code list is empty")
	}
	if t.BaseConfidence < 0 || t.BaseConfidence > 1 {
		return fmt.Errorf("base confidence %.3f out of range [0,1]", t.BaseConfidence)
	}
	if t.HighIncrement <= 0 || t.MediumIncrement <= 0 || t.LowIncrement <= 0 {
		return fmt.Errorf("tier increments must be positive")
	}
	if t.MajorityThreshold <= 0 || t.MajorityThreshold > 1 {
		return fmt.Errorf("majority threshold %.3f out of range (0,1]", t.MajorityThreshold)
	}
	return nil
}

// nonCSUCourseCodes is shared between CourseCodesOther and AllCourseCodes.
// The list is kept verbatim from the curated source, repeats included:
// found-code counting walks the raw list.
var nonCSUCourseCodes = []string{
	"BYU3301", "BYU3500", "CYU3300", "CYU3201", "CYU3302", "PHU3300",
	"PHU3301", "PHU3202", "ZYU3500", "ZYU3301", "ADU3300", "ADU3201",
	"ADU3302", "PEU3300", "PEU3301", "PEU3202", "ADE3200", "CYE3200",
	"LTE34GE", "FDE3021", "CSE3214", "LLU3261", "OSU3208", "DSU3298",
	"FNU3200", "ADU3218", "BYU4300", "BYU4301", "BYU4302", "BYU4303",
	"CYU4300", "CYU4301", "CYU4303", "CYU4302", "PHU4300", "PHU4301",
	"PHU4302", "PHU4303", "ZYU4300", "ZYU4301", "ZYU4302", "ZYU4303",
	"ADU4300", "ADU4301", "ADU4302", "ADU4303", "PEU4300", "PEU4301",
	"PEU4302", "PEU4303", "BYU3500", "BYU3501", "BYU5302", "BYU5303",
	"BYU5304", "BYU5305", "BYU5306", "BYU5307", "BYU5308", "BYU5610",
	"CYU5300", "CYU5301", "CYU5302", "CYU5303", "CYU5304", "CYU5305",
	"CYU5306", "CYU5307", "CYU5308", "CYU5309", "CYU5310", "CYU5611",
	"CYU5312", "CYU5313", "CYU5614", "CYU5615", "PHU5300", "PHU5301",
	"PHU5302", "PHU5303", "PHU5304", "PHU5305", "PHU5306", "PHU5307",
	"PHU5308", "PHU5309", "PHU5610", "PHU5311", "PHU5312", "PHU5313",
	"PHU5314", "PHU5315", "ZYU5300", "ZYU5301", "ZYU5302", "ZYU5303",
	"ZYU5304", "ZYU5305", "ZYU5306", "ZYU5307", "ZYU5608", "ZYU5309",
	"ZYU5310", "ZYU5311", "ZYU5312", "ZYU5313", "ZYU5314", "ZYU5315",
	"ADU5300", "ADU5301", "ADU5302", "ADU5303", "ADU5304", "ADU5305",
	"ADU5307", "ADU5308", "ADU5309", "ADU5310", "ADU5312", "ADU5313",
	"ADU5314", "ADU5615", "PEU5300", "PEU5301", "PEU5302", "PEU5303",
	"PEU5304", "PEU5305", "PEU5306", "PEU5307", "ADU5318", "ADU5319",
	"ADU5320", "ADU5321", "BYU5318", "PHU5318",
}

var csuCourseCodes = []string{
	"CSU3200", "CSU3301", "CSU3302", "CSU4300", "CSU4301", "CSU4302",
	"CSU4303", "CSU5300", "CSU5301", "CSU5302", "CSU5303", "CSU5304",
	"CSU5305", "CSU5306", "CSU5312", "CSU5308", "CSU5309", "CSU5310",
	"CSU5311", "CSU5320",
}

// DefaultTables returns the curated OUSL phrase configuration.
func DefaultTables() Tables {
	all := make([]string, 0, len(csuCourseCodes)+len(nonCSUCourseCodes))
	all = append(all, csuCourseCodes...)
	all = append(all, nonCSUCourseCodes...)

	return Tables{
		MandatoryPhrase:    "The Open University of Sri Lanka",
		MandatoryPhraseAlt: "THE OPEN UNIVERSITY OF SRI LANKA",

		HighFaculty: []string{
			"FACULTY OF NATURAL SCIENCE",
			"Faculty of Natural Science",
			"Faculty of Engineering Technology",
			"Faculty of Humanities and Social Sciences",
			"Faculty of Education",
			"Faculty of Health Sciences",
			"Faculty of Engineering",
			"Faculty of Management and Commerce",
			"Faculty of Health Sciences and Allied Health Sciences",
			"Faculty of Computing",
			"Faculty of Science",
		},
		HighDegreeProgramme: []string{
			"BACHELOR OF SCIENCE DEGREE PROGRAMME",
			"Bachelor of Science Degree Programme",
			"Bachelor of Technology Honours",
			"Bachelor of Software Engineering Honours",
			"Bachelor of Science Honours in Engineering",
			"Bachelor of Laws (LLB) Honours",
			"Bachelor of Arts in Social Sciences",
			"Bachelor of Arts in English and English Language Teaching",
			"Bachelor of Science Honours in Psychology",
			"Bachelor of Business Management (BMS) Honours",
			"Bachelor of Industrial Studies Honours",
			"Bachelor of Science Honours in Nursing",
			"Bachelor of Medical Laboratory Sciences Honours",
			"Master of Science in Nursing",
			"Bachelor of Education Honours",
			"Advanced Certificate In Pre-school Education",
			"Bachelor of Science (General)",
			"Master of Science",
			"Postgraduate Diploma",
		},
		HighDepartment: []string{
			"Department of Computer Science",
			"Department of Electrical and Computer Engineering",
			"Department of Mathematics and Philosophy of Engineering",
			"Department of Mechanical Engineering",
		},
		CourseCodesCSU: csuCourseCodes,
		HighOfficialMarkers: []string{
			"University seal",
			"Official letterhead",
			"university logo",
		},

		MediumFullAddress: []string{
			"PO Box 21, The Open University of Sri Lanka, Nawala, Nugegoda",
			"P.O. Box 21",
			"Nawala, Nugegoda",
		},
		CourseCodesOther: nonCSUCourseCodes,
		MediumAcademicTerms: []string{
			"2024/2025", "2023/2024", "Semester 1", "semester 2", "CAT 1",
			"CAT 2", "OBT", "NBT", "ELIGIBILITY", "MARKS", "PRACTICAL",
			"Workshop", "VIVA", "Lab reservation", "Semester", "Academic year",
		},
		MediumDocumentTypes: []string{
			"Syllabus", "Transcript", "Certificate", "Assignment",
			"Research Paper", "MTT", "Tentative", "Course Outline",
			"Examination", "Assessment",
		},
		MediumStaffAffiliation: []string{
			"Lecturer", "Senior Lecturer", "Professor", "Dr.",
			"OUSL affiliation", "Department of",
		},

		LowGeneralFaculties: []string{
			"Faculty of Engineering",
			"Faculty of Humanities and Social Sciences",
			"Faculty of Management and Commerce",
			"Faculty of Health Sciences and Allied Health Sciences",
			"Faculty of Education",
			"Faculty of Computing",
			"Faculty of Science",
		},
		LowGeneralProgrammes: []string{
			"Civil Engineering", "Mechanical Engineering", "Mechatronics Engineering",
			"Computer Engineering", "Electrical & Electronic Engineering",
			"Agricultural Engineering", "Textile & Apparel Engineering",
			"Fashion Design and Apparel Production", "Textile Manufacture",
			"Apparel Production and Management", "Marketing Management",
			"Special Needs Education", "Pre-school Education",
			"Laboratory Technology", "Food Science",
			"Physics", "Chemistry", "Zoology", "Botany", "Mathematics",
		},

		AllCourseCodes: all,

		BaseConfidence:    0.70,
		HighIncrement:     0.175,
		MediumIncrement:   0.115,
		LowIncrement:      0.04,
		MajorityThreshold: 0.5,
	}
}
