package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalExpression(t *testing.T) {
	cases := map[string]float64{
		"17 * 4":               68,
		"2 + 3 * 4":            14,
		"(2 + 3) * 4":          20,
		"10 / 4":               2.5,
		"10 % 3":               1,
		"2 ^ 10":               1024,
		"2 ^ 3 ^ 2":            512, // right-associative
		"-5 + 3":               -2,
		"--4":                  4,
		"sqrt(16)":             4,
		"min(3, 7)":            3,
		"max(3, 7)":            7,
		"pow(2, 8)":            256,
		"abs(-12.5)":           12.5,
		"floor(2.9) + ceil(2.1)": 5,
		"pi":                   math.Pi,
		"2 * e":                2 * math.E,
		"round(sin(pi/2))":     1,
		"  42  ":               42,
	}
	for expr, want := range cases {
		got, err := evalExpression(expr)
		require.NoError(t, err, "expr %q", expr)
		assert.InDelta(t, want, got, 1e-9, "expr %q", expr)
	}
}

func TestEvalExpressionErrors(t *testing.T) {
	cases := []string{
		"1 / 0",
		"5 % 0",
		"2 +",
		"(1 + 2",
		"foo",
		"system(1)",
		"min(1)",
		"sqrt(1, 2)",
		"1 2",
		"sqrt(-1)", // NaN
		"",
	}
	for _, expr := range cases {
		_, err := evalExpression(expr)
		assert.Error(t, err, "expr %q", expr)
	}
}

func TestCalculateTool(t *testing.T) {
	tool := NewCalculateTool()

	out, err := tool.Execute(context.Background(), map[string]any{"expression": "17 * 4"})
	require.NoError(t, err)
	data, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "17 * 4", data["expression"])
	assert.Equal(t, float64(68), data["result"])

	_, err = tool.Execute(context.Background(), map[string]any{"expression": "1 / 0"})
	assert.Error(t, err)
}
