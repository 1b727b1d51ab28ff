package documents

import "time"

// DocumentType classifies an analyzed medical document.
type DocumentType string

const (
	TypePrescription     DocumentType = "prescription"
	TypeLabReport        DocumentType = "lab_report"
	TypeDischargeSummary DocumentType = "discharge_summary"
	TypeReferralLetter   DocumentType = "referral_letter"
	TypeOther            DocumentType = "other"
)

// Status is the lifecycle state of a stored document record.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Confidence grades a clinical code suggestion.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Priority grades a suggested task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AssigneeRole names the practice role a task is routed to.
type AssigneeRole string

const (
	RoleGP         AssigneeRole = "GP"
	RoleNurse      AssigneeRole = "Nurse"
	RoleAdmin      AssigneeRole = "Admin"
	RolePharmacist AssigneeRole = "Pharmacist"
	RoleSpecialist AssigneeRole = "Specialist"
)

// ClinicalCode is a coded clinical finding extracted from a document.
// Immutable once stored.
type ClinicalCode struct {
	Title       string     `json:"title"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
}

// SuggestedTask is a follow-up action proposed by the analyzer.
type SuggestedTask struct {
	TaskType    string       `json:"task_type"`
	Description string       `json:"description"`
	Priority    Priority     `json:"priority"`
	AssignedTo  AssigneeRole `json:"assigned_to"`
}

// PatientInfo carries patient identifiers found in the document. All fields
// are optional free text; no validation is performed on them here.
type PatientInfo struct {
	Name      string `json:"name,omitempty"`
	DOB       string `json:"dob,omitempty"`
	NHSNumber string `json:"nhs_number,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Analysis is the result schema returned by the external analyzer for one
// document.
type Analysis struct {
	DocumentType     DocumentType    `json:"document_type"`
	DocumentDate     string          `json:"document_date"`
	DocumentSender   string          `json:"document_sender"`
	DocumentReceiver string          `json:"document_receiver"`
	Summary          string          `json:"summary"`
	ClinicalCodes    []ClinicalCode  `json:"clinical_codes"`
	SuggestedTasks   []SuggestedTask `json:"suggested_tasks"`
	PatientInfo      *PatientInfo    `json:"patient_info"`
	ProcessingTime   float64         `json:"processing_time"`
	Status           string          `json:"status"`
	Timestamp        string          `json:"timestamp"`
}

// ProcessedDocument is one stored row combining upload metadata with the
// analyzer's result. ClinicalCodes and SuggestedTasks are always non-nil;
// PatientInfo may be absent.
type ProcessedDocument struct {
	ID               string
	UserID           string
	Filename         string
	FileURL          string
	DocumentType     DocumentType
	DocumentDate     string
	DocumentSender   string
	DocumentReceiver string
	Summary          string
	ClinicalCodes    []ClinicalCode
	SuggestedTasks   []SuggestedTask
	PatientInfo      *PatientInfo
	ProcessingTime   float64
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
