package errors

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
)

func TestNewConfigurationError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		param   string
		reason  string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "with value",
			op:      "Select",
			param:   "max_terms",
			reason:  "must be at least len(force_in)",
			value:   1,
			wantMsg: "stepwise: Select: invalid max_terms: must be at least len(force_in) (got: 1)",
		},
		{
			name:    "without value",
			op:      "Select",
			param:   "response",
			reason:  "column not found",
			wantMsg: "stepwise: Select: invalid response: column not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigurationError(tt.op, tt.param, tt.reason, tt.value)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var cfgErr *ConfigurationError
			if !As(err, &cfgErr) {
				t.Error("Error should be castable to *ConfigurationError")
			}
		})
	}
}

func TestUnidentifiableModelError(t *testing.T) {
	err := NewUnidentifiableModelError("Select", "response has zero variance")

	want := "stepwise: Select: cannot fit a model for this selection: response has zero variance"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	if !Is(err, ErrUnidentifiable) {
		t.Error("Expected Is(err, ErrUnidentifiable) to be true")
	}

	wrapped := Wrap(err, "gen model")
	if !Is(wrapped, ErrUnidentifiable) {
		t.Error("Expected wrapped error to still match ErrUnidentifiable")
	}

	var uErr *UnidentifiableModelError
	if !As(wrapped, &uErr) {
		t.Fatal("Error should be castable to *UnidentifiableModelError")
	}
	if uErr.Reason != "response has zero variance" {
		t.Errorf("Reason = %q", uErr.Reason)
	}

	if Is(NewConfigurationError("Select", "x", "y", nil), ErrUnidentifiable) {
		t.Error("ConfigurationError must not match ErrUnidentifiable")
	}
}

func TestModelErrorUnwrap(t *testing.T) {
	err := NewModelError("OLS.Fit", "singular matrix", ErrSingularMatrix)

	if !Is(err, ErrSingularMatrix) {
		t.Error("Expected Is(err, ErrSingularMatrix) to be true")
	}
	if !strings.Contains(err.Error(), "OLS.Fit") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestSingularMatrixWarning(t *testing.T) {
	w := NewSingularMatrixWarning("X1b", 2, "")
	want := `candidate "X1b" skipped in round 2: singular design matrix`
	if w.Error() != want {
		t.Errorf("Error() = %v, want %v", w.Error(), want)
	}

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Warn().EmbedObject(w).Msg("skipped")
	out := buf.String()
	for _, field := range []string{`"term":"X1b"`, `"round":2`, `"type":"SingularMatrixWarning"`} {
		if !strings.Contains(out, field) {
			t.Errorf("expected %s in %s", field, out)
		}
	}
}

func TestWarnHandlers(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewDataConversionWarning("ENSEMBLE", "string", "float64", "non-numeric column dropped"))
	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}

	var zl []error
	SetZerologWarnFunc(func(w error) { zl = append(zl, w) })
	Warn(NewSingularMatrixWarning("A", 1, ""))
	SetZerologWarnFunc(nil)

	if len(zl) != 1 || len(got) != 1 {
		t.Errorf("zerolog hook should take precedence: zerolog=%d handler=%d", len(zl), len(got))
	}
}

func TestCheckNumericalStability(t *testing.T) {
	if err := CheckNumericalStability("coef", []float64{1, 2, 3}, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := CheckNumericalStability("coef", []float64{1, math.NaN()}, 3)
	var nErr *NumericalInstabilityError
	if !As(err, &nErr) {
		t.Fatalf("expected NumericalInstabilityError, got %v", err)
	}
	if nErr.Iteration != 3 {
		t.Errorf("Iteration = %d, want 3", nErr.Iteration)
	}

	m := mat.NewDense(2, 2, []float64{1, math.Inf(1), 0, 1})
	if err := CheckMatrix("xtx", m, 2, 2, 0); err == nil {
		t.Error("expected error for Inf entry")
	}
}

func TestSafeExecuteRecoversGonumPanic(t *testing.T) {
	err := SafeExecute("design matrix product", func() error {
		a := mat.NewDense(2, 3, nil)
		b := mat.NewDense(2, 3, nil)
		var c mat.Dense
		c.Mul(a, b) // shape mismatch panics
		return nil
	})

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected PanicError, got %v", err)
	}
	if panicErr.Operation != "design matrix product" {
		t.Errorf("Operation = %q", panicErr.Operation)
	}
	if !strings.Contains(panicErr.String(), "Stack trace:") {
		t.Error("String() should include stack trace information")
	}
}

func TestRecoverKeepsExistingError(t *testing.T) {
	originalErr := fmt.Errorf("original error")

	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = originalErr
		panic("panic after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation") {
		t.Errorf("missing panic info: %s", err.Error())
	}
	if !Is(err, originalErr) {
		t.Error("should still identify the original error")
	}
}
