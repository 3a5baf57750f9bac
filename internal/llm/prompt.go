package llm

import (
	"fmt"

	"budgetgrader/internal/domain"
)

// BuildExtractionPrompt returns the system prompt that turns worksheet text
// into the CanonicalRecord JSON shape.
func BuildExtractionPrompt() string {
	return `You are a nursing budget data extraction assistant. Extract ALL numerical data from the student's supplies budget assignment.

The assignment contains 3 tables:
1. Fixed Expenses with columns: 5-month consumption, Monthly consumption, 2024-year consumption, Inflation rate, Inflation amount, Estimated 2025-year consumption
2. Variable Expenses with columns: 5-month consumption, 5-month patient days, Consumption per patient day, Estimated 2025 yearly pt. days, Amount per yearly pt. days, Inflation rate, Inflation amount, Total amount
3. Total Expenses with columns: 5-month consumption, Yearly consumption, Inflation rate, Inflation amount, Total amount

Return a JSON object with this EXACT structure:

{
  "student_name": "Student Full Name",
  "department": "Department/Unit Name",
  "fixed_expenses": [
    {
      "description": "Office Supplies",
      "five_month_consumption": 500,
      "monthly_consumption": 100,
      "year_2024_consumption": 1200,
      "inflation_rate": 5,
      "inflation_amount": 60,
      "estimated_2025_consumption": 1260
    }
  ],
  "variable_expenses": [
    {
      "description": "Medical/Surgical Supplies",
      "five_month_consumption": 20000,
      "five_month_patient_days": 1000,
      "consumption_per_patient_day": 20,
      "estimated_2025_yearly_patient_days": 2400,
      "amount_per_yearly_patient_days": 48000,
      "inflation_rate": 5,
      "inflation_amount": 2400,
      "total_amount": 50400
    }
  ],
  "total_expenses": {
    "five_month_consumption": 37750,
    "yearly_consumption": 90600,
    "inflation_rate": 5,
    "inflation_amount": 4530,
    "total_amount": 95130
  },
  "patient_days_initial": 3800
}

IMPORTANT: Extract ONLY the numbers the student provided. Do NOT calculate or correct anything. If a value is missing, use null.
Do not include subtotal or total rows in the expense arrays.
Return ONLY valid JSON, no markdown formatting or explanation.`
}

// BuildExtractionUserPrompt wraps the worksheet text for the extraction request.
func BuildExtractionUserPrompt(rawText string) string {
	return "Extract all budget data from this assignment:\n\n" + rawText +
		"\n\nReturn the data as JSON following the exact structure specified."
}

// BuildGradingPrompt returns the system prompt that asks a remote model to
// check every derived figure of a CanonicalRecord and answer with a ScoreReport.
func BuildGradingPrompt(opts domain.GradingOptions) string {
	return fmt.Sprintf(`You are a nursing budget grading assistant. Validate student calculations against these formulas.

FIXED EXPENSES (fields in "validations"):
- monthly_consumption = five_month_consumption / 5
- year_2024_consumption = monthly_consumption (as submitted) * 12
- inflation_amount = year_2024_consumption (as submitted) * (inflation_rate / 100)
- estimated_2025_consumption = year_2024_consumption (as submitted) + inflation_amount (as submitted)

VARIABLE EXPENSES (fields in "validations"):
- estimated_2025_yearly_patient_days = (five_month_patient_days / 5) * 12
- consumption_per_patient_day = five_month_consumption / five_month_patient_days
- amount_per_yearly_patient_days = consumption_per_patient_day (as submitted) * estimated_2025_yearly_patient_days (as submitted)
- inflation_amount = amount_per_yearly_patient_days (as submitted) * (inflation_rate / 100)
- total_amount = amount_per_yearly_patient_days (as submitted) + inflation_amount (as submitted)

TOTAL EXPENSES (keys of "total_expenses_results"):
- five_month_consumption = sum of all fixed and variable five_month_consumption
- yearly_consumption = sum of fixed year_2024_consumption + sum of variable amount_per_yearly_patient_days
- inflation_amount = yearly_consumption (as submitted) * (inflation_rate / 100)
- total_amount = yearly_consumption (as submitted) + inflation_amount (as submitted)

GRADING RULES:
- When an item has no inflation_rate, use %[1]g%%.
- A value is correct when it is within %[2]g of the expected value.
- Skip a check when its inputs are missing. If the inputs are present but the checked value is missing, it is incorrect with status "Missing value".
- Status is "Correct", "Missing value" or "Incorrect (off by X.XX)".
- Each check is one calculation; correct_count counts the correct ones.

Return ONLY valid JSON with this structure:

{
  "student_name": "Name",
  "department": "Department",
  "fixed_expenses_results": [
    {
      "description": "Office Supplies",
      "validations": {
        "monthly_consumption": {"correct": true, "status": "Correct", "expected": 100, "actual": 100},
        "year_2024_consumption": {"correct": false, "status": "Incorrect (off by 12.50)", "expected": 1200, "actual": 1212.5}
      }
    }
  ],
  "variable_expenses_results": [],
  "total_expenses_results": {
    "five_month_consumption": {"correct": true, "status": "Correct", "expected": 37750, "actual": 37750}
  },
  "correct_count": 2,
  "total_calculations": 3,
  "percentage": 66.67,
  "summary": "Brief summary of performance"
}

Be thorough: check EVERY calculation for EVERY item. Return ONLY JSON, no markdown.`, opts.InflationRate, opts.Tolerance)
}

// BuildGradingUserPrompt wraps the serialized record for the grading request.
func BuildGradingUserPrompt(recordJSON []byte) string {
	return "Validate this student's budget and provide detailed grading:\n\n" + string(recordJSON) +
		"\n\nCheck ALL formulas and calculations. Return the JSON report."
}
