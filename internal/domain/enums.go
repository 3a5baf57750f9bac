package domain

// FileType represents the worksheet formats accepted for grading.
type FileType string

const (
	FileTypeDOCX FileType = "docx"
	FileTypeXLSX FileType = "xlsx"
	FileTypePDF  FileType = "pdf"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypeDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	FileTypeXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FileTypePDF:  "application/pdf",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"docx": FileTypeDOCX,
	"xlsx": FileTypeXLSX,
	"pdf":  FileTypePDF,
}

// GradingMode selects which grader implementation validates a record.
type GradingMode string

const (
	GradingModeRuleBased GradingMode = "rule_based"
	GradingModeRemote    GradingMode = "remote"
)

// Canonical field names shared by line items, the totals record and validation results.
const (
	FieldDescription                    = "description"
	FieldFiveMonthConsumption           = "five_month_consumption"
	FieldMonthlyConsumption             = "monthly_consumption"
	FieldYear2024Consumption            = "year_2024_consumption"
	FieldInflationRate                  = "inflation_rate"
	FieldInflationAmount                = "inflation_amount"
	FieldEstimated2025Consumption       = "estimated_2025_consumption"
	FieldFiveMonthPatientDays           = "five_month_patient_days"
	FieldConsumptionPerPatientDay       = "consumption_per_patient_day"
	FieldEstimated2025YearlyPatientDays = "estimated_2025_yearly_patient_days"
	FieldAmountPerYearlyPatientDays     = "amount_per_yearly_patient_days"
	FieldTotalAmount                    = "total_amount"
	FieldYearlyConsumption              = "yearly_consumption"
)

// FixedValidatedFields lists the derived fixed-expense fields in display order.
var FixedValidatedFields = []string{
	FieldMonthlyConsumption,
	FieldYear2024Consumption,
	FieldInflationAmount,
	FieldEstimated2025Consumption,
}

// VariableValidatedFields lists the derived variable-expense fields in display order.
var VariableValidatedFields = []string{
	FieldEstimated2025YearlyPatientDays,
	FieldConsumptionPerPatientDay,
	FieldAmountPerYearlyPatientDays,
	FieldInflationAmount,
	FieldTotalAmount,
}

// TotalValidatedFields lists the totals-record fields in display order.
var TotalValidatedFields = []string{
	FieldFiveMonthConsumption,
	FieldYearlyConsumption,
	FieldInflationAmount,
	FieldTotalAmount,
}
