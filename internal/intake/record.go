package intake

import "encoding/json"

// DefaultVisaInterest is the visa category this intake flow collects data for.
const DefaultVisaInterest = "EB1-A"

// BasicInformation holds the applicant identity fields.
type BasicInformation struct {
	FirstName string `json:"first_name" mapstructure:"first_name"`
	LastName  string `json:"last_name" mapstructure:"last_name"`
	Email     string `json:"email" mapstructure:"email"`
	Phone     string `json:"phone" mapstructure:"phone"`
}

// VisaAndRole holds the application context fields.
type VisaAndRole struct {
	VisaInterest string `json:"visa_interest" mapstructure:"visa_interest"`
	Industry     string `json:"industry" mapstructure:"industry"`
	JobTitle     string `json:"job_title" mapstructure:"job_title"`
}

// Criteria holds one free-text slot per recognized EB1-A achievement category.
// An empty string means the criterion has not been addressed yet; the agent
// writes an explicit "N/A" once the user indicates it does not apply.
type Criteria struct {
	Awards                string `json:"awards_description" mapstructure:"awards_description"`
	AssociationMembership string `json:"association_membership_description" mapstructure:"association_membership_description"`
	PublishedMaterial     string `json:"published_material_description" mapstructure:"published_material_description"`
	JudgingWork           string `json:"judging_work_description" mapstructure:"judging_work_description"`
	OriginalContributions string `json:"original_contributions_description" mapstructure:"original_contributions_description"`
	ScholarlyArticles     string `json:"scholarly_articles_description" mapstructure:"scholarly_articles_description"`
	ArtisticShowcases     string `json:"artistic_showcases_description" mapstructure:"artistic_showcases_description"`
	LeadingRole           string `json:"leading_role_description" mapstructure:"leading_role_description"`
	HighSalary            string `json:"high_salary_description" mapstructure:"high_salary_description"`
	CommercialSuccess     string `json:"commercial_success_description" mapstructure:"commercial_success_description"`
}

// SupportingDocuments holds references populated either by the model echo or
// directly by the upload/URL collaborators.
type SupportingDocuments struct {
	LinkedinURL string `json:"linkedin_url" mapstructure:"linkedin_url"`
	ResumeFile  string `json:"resume_file" mapstructure:"resume_file"`
}

// Record is the structured intake record accumulated across the conversation.
// Its JSON shape is the wire contract with the model: the <updated_data>
// region must echo exactly these keys.
type Record struct {
	BasicInformation    BasicInformation    `json:"basic_information" mapstructure:"basic_information"`
	VisaAndRole         VisaAndRole         `json:"visa_and_role" mapstructure:"visa_and_role"`
	Criteria            Criteria            `json:"eb1a_criteria" mapstructure:"eb1a_criteria"`
	SupportingDocuments SupportingDocuments `json:"supporting_documents" mapstructure:"supporting_documents"`
}

// NewRecord returns a blank record with defaults applied.
func NewRecord() *Record {
	return &Record{
		VisaAndRole: VisaAndRole{VisaInterest: DefaultVisaInterest},
	}
}

// Tree returns the record as a plain key/value tree suitable for display and
// for inclusion in model prompts.
func (r *Record) Tree() map[string]any {
	data, err := json.Marshal(r)
	if err != nil {
		return map[string]any{}
	}

	tree := make(map[string]any)
	if err := json.Unmarshal(data, &tree); err != nil {
		return map[string]any{}
	}

	return tree
}

// PrettyJSON renders the record as indented JSON.
func (r *Record) PrettyJSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
