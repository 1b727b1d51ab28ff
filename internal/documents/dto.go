package documents

import "time"

// DocumentResponse is the outward-facing representation of a processed
// document. Field names follow the analyzer's snake_case wire convention.
type DocumentResponse struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Filename         string          `json:"filename"`
	FileURL          string          `json:"file_url"`
	DocumentType     DocumentType    `json:"document_type,omitempty"`
	DocumentDate     string          `json:"document_date,omitempty"`
	DocumentSender   string          `json:"document_sender,omitempty"`
	DocumentReceiver string          `json:"document_receiver,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	ClinicalCodes    []ClinicalCode  `json:"clinical_codes"`
	SuggestedTasks   []SuggestedTask `json:"suggested_tasks"`
	PatientInfo      *PatientInfo    `json:"patient_info,omitempty"`
	ProcessingTime   float64         `json:"processing_time,omitempty"`
	Status           Status          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToResponse converts a stored document to its wire representation.
func ToResponse(doc ProcessedDocument) DocumentResponse {
	codes := doc.ClinicalCodes
	if codes == nil {
		codes = []ClinicalCode{}
	}
	tasks := doc.SuggestedTasks
	if tasks == nil {
		tasks = []SuggestedTask{}
	}
	return DocumentResponse{
		ID:               doc.ID,
		UserID:           doc.UserID,
		Filename:         doc.Filename,
		FileURL:          doc.FileURL,
		DocumentType:     doc.DocumentType,
		DocumentDate:     doc.DocumentDate,
		DocumentSender:   doc.DocumentSender,
		DocumentReceiver: doc.DocumentReceiver,
		Summary:          doc.Summary,
		ClinicalCodes:    codes,
		SuggestedTasks:   tasks,
		PatientInfo:      doc.PatientInfo,
		ProcessingTime:   doc.ProcessingTime,
		Status:           doc.Status,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}
