package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budgetgrader/internal/app"
	"budgetgrader/internal/config"
	"budgetgrader/internal/domain"
	"budgetgrader/internal/service"
)

func ruleBasedConfig() *config.Config {
	return &config.Config{
		Grading: config.GradingConfig{
			InflationRate:    5,
			Tolerance:        0.5,
			Mode:             domain.GradingModeRuleBased,
			BatchConcurrency: 2,
		},
		Upload: config.UploadConfig{MaxFileSizeMB: 5},
	}
}

func worksheet(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := [][]interface{}{
		{"Student Name: Jane Doe"},
		{"ICU"},
		{},
		{"Description", "5 Month Consumption", "Monthly Consumption", "2024 Consumption", "Inflation Rate %", "Inflation Amount", "Estimated 2025"},
		{"Gloves", "500", "100", "1200", "5%", "60", "1260"},
		{"Masks", "250", "50", "600", "5%", "30", "630"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestBuild_RuleBasedEndToEnd(t *testing.T) {
	p, err := app.Build(ruleBasedConfig())
	require.NoError(t, err)
	assert.Equal(t, domain.GradingModeRuleBased, p.Mode)
	assert.False(t, p.RemoteEnabled)

	result, err := p.Service.Grade(context.Background(), service.GradeInput{
		FileName: "budget.xlsx",
		Content:  worksheet(t),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", result.Report.StudentName)
	require.Len(t, result.Report.FixedExpensesResults, 2)
	assert.Equal(t, 8, result.Report.TotalCalculations)
	assert.Equal(t, 8, result.Report.CorrectCount)
	assert.Equal(t, 100.0, result.Report.Percentage)
}

func TestBuild_RemoteModeNeedsProvider(t *testing.T) {
	cfg := ruleBasedConfig()
	cfg.Grading.Mode = domain.GradingModeRemote

	_, err := app.Build(cfg)
	assert.Error(t, err)
}

func TestBuild_UnknownProvider(t *testing.T) {
	cfg := ruleBasedConfig()
	cfg.Parser.Primary = config.ParserProviderConfig{Provider: "carrier-pigeon"}

	_, err := app.Build(cfg)
	assert.ErrorContains(t, err, "unknown llm provider")
}

func TestBuild_RemoteExtractionAttached(t *testing.T) {
	cfg := ruleBasedConfig()
	cfg.Parser.Primary = config.ParserProviderConfig{Provider: "ollama", BaseURL: "http://127.0.0.1:1"}

	p, err := app.Build(cfg)
	require.NoError(t, err)
	assert.True(t, p.RemoteEnabled)
	assert.Equal(t, domain.GradingModeRuleBased, p.Mode)
}
