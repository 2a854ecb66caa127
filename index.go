package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// PatientIndex maps exchange patient ids to the clinical records created for
// them. It is the pipeline's only durable state, persisted between the load
// and condition stages. Operators may hand-edit the mrn fields in the file,
// so it is written indented.
type PatientIndex map[string]*ClinicalRecord

// Save rewrites the index file in full. There is no merge: re-running the
// load stage replaces the previous run's index.
func (pi PatientIndex) Save(path string) error {
	data, err := json.MarshalIndent(pi, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding patient index: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing patient index: %w", err)
	}

	return nil
}

func LoadIndex(path string) (PatientIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading patient index: %w", err)
	}

	var index PatientIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("error parsing patient index: %w", err)
	}

	return index, nil
}
