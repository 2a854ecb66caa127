package main

import (
	"encoding/json"
)

/*********************************
 ****** FHIR Nested Structs ******
 *********************************/

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type IdentifierType struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

type Identifier struct {
	System string         `json:"system,omitempty"`
	Value  string         `json:"value,omitempty"`
	Use    string         `json:"use,omitempty"`
	Type   IdentifierType `json:"type,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Given  []string `json:"given,omitempty"`
	Family string   `json:"family,omitempty"`
}

type Address struct {
	Line       []string `json:"line,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Extension struct {
	URL            string     `json:"url"`
	ValueReference *Reference `json:"valueReference,omitempty"`
}

/*********************************
 ****** Exchange Resources *******
 *********************************/

// Simple struct to identify resourceType
type Resource struct {
	ResourceType string `json:"resourceType"`
}

type Bundle struct {
	ResourceType string `json:"resourceType"`
	Total        int    `json:"total"`
	Entry        []struct {
		FullUrl  string          `json:"fullUrl"`
		Resource json.RawMessage `json:"resource"`
	} `json:"entry"`
}

// PatientResource is the exchange's view of a patient. BirthDate stays a
// plain string so the value reaches the clinical record byte-for-byte.
type PatientResource struct {
	ResourceType string       `json:"resourceType"`
	Id           string       `json:"id"`
	Identifier   []Identifier `json:"identifier"`
	Name         []HumanName  `json:"name"`
	Address      []Address    `json:"address"`
	BirthDate    string       `json:"birthDate"`
	Gender       string       `json:"gender"`
}

// ConditionResource is the exchange's view of a clinical condition.
type ConditionResource struct {
	ResourceType       string            `json:"resourceType"`
	Id                 string            `json:"id"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Extension          []Extension       `json:"extension,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	Subject            *Reference        `json:"subject,omitempty"`
	OnsetDateTime      string            `json:"onsetDateTime,omitempty"`
	AssertedDate       string            `json:"assertedDate,omitempty"`
}

// Condition is the FHIR Condition record posted to the clinical FHIR
// endpoint. Fields absent from the source are omitted, never sent empty.
type Condition struct {
	ResourceType       string            `json:"resourceType"`
	ClinicalStatus     *CodeableConcept  `json:"clinicalStatus,omitempty"`
	VerificationStatus *CodeableConcept  `json:"verificationStatus,omitempty"`
	Extension          []Extension       `json:"extension,omitempty"`
	Category           []CodeableConcept `json:"category,omitempty"`
	Code               *CodeableConcept  `json:"code,omitempty"`
	Subject            *Reference        `json:"subject,omitempty"`
	OnsetDateTime      string            `json:"onsetDateTime,omitempty"`
	AssertedDate       string            `json:"assertedDate,omitempty"`
}

/*********************************
 ****** Clinical Records *********
 *********************************/

// ClinicalRecord is the registration payload for the clinical-records API.
// MRN starts empty and is filled from the registration response, or by an
// operator editing the index file between stages.
type ClinicalRecord struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Password1   string      `json:"password1"`
	Password2   string      `json:"password2"`
	DOB         string      `json:"dob"`
	Gender      string      `json:"gender"`
	EHRCode     string      `json:"ehr_code"`
	MRN         string      `json:"mrn"`
	UserProfile UserProfile `json:"user_profile"`
}

type UserProfile struct {
	Address            string `json:"address"`
	Phone              string `json:"phone"`
	PreferredAlertMode string `json:"preferred_alert_mode"`
	SecondaryAlertMode string `json:"secondary_alert_mode"`
}

// RegistrationResponse is what the clinical-records API returns on a
// successful registration. Some deployments assign the MRN later, in which
// case both fields may be empty.
type RegistrationResponse struct {
	ID  json.Number `json:"id"`
	MRN string      `json:"mrn"`
}

// AssignedMRN prefers the explicit mrn field, falling back to the record id.
func (r *RegistrationResponse) AssignedMRN() string {
	if r.MRN != "" {
		return r.MRN
	}
	return r.ID.String()
}
