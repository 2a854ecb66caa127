package main

import (
	"strings"
)

const (
	conditionClinicalSystem  = "http://terminology.hl7.org/CodeSystem/condition-clinical"
	conditionVerStatusSystem = "http://terminology.hl7.org/CodeSystem/condition-ver-status"
	conditionCategorySystem  = "http://terminology.hl7.org/CodeSystem/condition-category"

	// Registration placeholders. The clinical system requires these fields
	// but the values are reset out-of-band after transfer.
	placeholderPassword = "Password123!"
	placeholderPhone    = "1234567890"
	defaultAlertMode    = "Email"
)

// buildCodeableConcept wraps a single system/code/display triple.
func buildCodeableConcept(system, code, display string) *CodeableConcept {
	return &CodeableConcept{
		Coding: []Coding{
			{System: system, Code: code, Display: display},
		},
	}
}

// MapPatient converts an exchange patient resource into a clinical-records
// registration payload. Pure and deterministic: the same resource always
// yields the same record.
func MapPatient(resource *PatientResource) (*ClinicalRecord, error) {
	if len(resource.Name) == 0 || len(resource.Name[0].Given) == 0 {
		return nil, &MappingError{Field: "name", Detail: "patient resource has no given name"}
	}

	firstName := resource.Name[0].Given[0]
	lastName := resource.Name[0].Family
	username := strings.ToLower(firstName + lastName)

	dob := ""
	if resource.BirthDate != "" {
		if _, err := parseDate(resource.BirthDate); err != nil {
			return nil, &MappingError{Field: "birthDate", Detail: err.Error()}
		}
		dob = resource.BirthDate + "T00:00:00Z"
	}

	return &ClinicalRecord{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: firstName,
		LastName:  lastName,
		Password1: placeholderPassword,
		Password2: placeholderPassword,
		DOB:       dob,
		Gender:    resource.Gender,
		EHRCode:   mrnIdentifier(resource.Identifier),
		UserProfile: UserProfile{
			Address:            fullAddress(resource.Address),
			Phone:              placeholderPhone,
			PreferredAlertMode: defaultAlertMode,
			SecondaryAlertMode: defaultAlertMode,
		},
	}, nil
}

// mrnIdentifier scans the identifier list for the MR-typed entry. No MR
// identifier is a documented fallback (empty ehr_code), not an error.
func mrnIdentifier(identifiers []Identifier) string {
	for _, identifier := range identifiers {
		for _, coding := range identifier.Type.Coding {
			if coding.Code == "MR" {
				return identifier.Value
			}
		}
	}
	return ""
}

func fullAddress(addresses []Address) string {
	if len(addresses) == 0 {
		return ""
	}

	address := addresses[0]
	line := ""
	if len(address.Line) > 0 {
		line = address.Line[0]
	}

	return strings.Join([]string{line, address.City, address.State, address.PostalCode}, " ")
}

// MapCondition converts an exchange condition resource into the FHIR
// Condition posted downstream. Clinical status is fixed to Active and
// verification status to Confirmed; the record lands on the problem list of
// the patient identified by mrn.
func MapCondition(resource *ConditionResource, mrn string) *Condition {
	condition := &Condition{
		ResourceType:       "Condition",
		ClinicalStatus:     buildCodeableConcept(conditionClinicalSystem, "active", "Active"),
		VerificationStatus: buildCodeableConcept(conditionVerStatusSystem, "confirmed", "Confirmed"),
		Category: []CodeableConcept{
			*buildCodeableConcept(conditionCategorySystem, "problem-list-item", "Problem List Item"),
		},
	}

	for _, extension := range resource.Extension {
		mapped := Extension{URL: extension.URL}
		if extension.ValueReference != nil {
			mapped.ValueReference = &Reference{Reference: extension.ValueReference.Reference}
		}
		condition.Extension = append(condition.Extension, mapped)
	}

	// A condition without a code block omits the coded problem entirely
	// rather than sending a malformed code.
	if resource.Code != nil {
		condition.Code = mapCodes(resource.Code)
	}

	if resource.Subject != nil {
		condition.Subject = &Reference{
			Reference: "Patient/" + mrn,
			Display:   resource.Subject.Display,
		}
	}

	condition.OnsetDateTime = resource.OnsetDateTime
	condition.AssertedDate = resource.AssertedDate

	return condition
}

// mapCodes copies each source coding triple. Text tracks the display of the
// coding being copied, so with multiple codings the last display wins.
func mapCodes(code *CodeableConcept) *CodeableConcept {
	mapped := &CodeableConcept{}
	for _, coding := range code.Coding {
		mapped.Text = coding.Display
		mapped.Coding = append(mapped.Coding, Coding{
			System:  coding.System,
			Code:    coding.Code,
			Display: coding.Display,
		})
	}
	return mapped
}
