package series

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/filter"
	"github.com/wildfunctions/formula/pkg/history"
)

func frames(values ...int64) []history.Frame {
	out := make([]history.Frame, len(values))
	for i, v := range values {
		out[i] = history.Frame{"x": decimal.NewNullDecimal(decimal.NewFromInt(v))}
	}
	return out
}

func TestEvaluate_Difference(t *testing.T) {
	node := expr.MustParse("[x]-[x#]")
	res, err := Evaluate(context.Background(), node, frames(1, 4, 9, 16))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Points) != 4 {
		t.Fatalf("got %d points, want 4", len(res.Points))
	}

	// No previous generation for the first point.
	if res.Points[0].Validity != expr.Null || res.Points[0].Value.Valid {
		t.Errorf("point 0 = %+v, want null", res.Points[0])
	}

	want := []int64{3, 5, 7}
	for i, w := range want {
		p := res.Points[i+1]
		if p.Validity != expr.OK {
			t.Errorf("point %d validity = %s, want ok", i+1, p.Validity)
			continue
		}
		if !p.Value.Decimal.Equal(decimal.NewFromInt(w)) {
			t.Errorf("point %d = %s, want %d", i+1, p.Value.Decimal, w)
		}
	}

	if res.Counts[expr.OK] != 3 || res.Counts[expr.Null] != 1 {
		t.Errorf("counts = %v", res.Counts)
	}
	if res.Formula != "([x] - [x#])" {
		t.Errorf("formula = %q", res.Formula)
	}
}

func TestEvaluate_NotFound(t *testing.T) {
	node := expr.MustParse("[y]+1")
	res, err := Evaluate(context.Background(), node, frames(1, 2))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	for _, p := range res.Points {
		if p.Validity != expr.NotFound {
			t.Errorf("generation %d validity = %s, want not_found", p.Generation, p.Validity)
		}
	}
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Evaluate(ctx, expr.MustParse("[x]"), frames(1))
	if err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSmooth(t *testing.T) {
	node := expr.MustParse("[x]")
	res, err := Evaluate(context.Background(), node, frames(3, 9, 4, 52, 3, 8, 6, 2, 2, 9))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	got, err := Smooth(res, filter.WindowShrink, 3)
	if err != nil {
		t.Fatalf("Smooth: %v", err)
	}
	want := []int64{3, 4, 9, 4, 8, 6, 6, 2, 2, 9}
	for i, w := range want {
		if !got[i].Valid || !got[i].Decimal.Equal(decimal.NewFromInt(w)) {
			t.Errorf("smoothed[%d] = %v, want %d", i, got[i], w)
		}
	}

	if _, err := Smooth(res, filter.Wraparound, 3); err == nil {
		t.Error("expected error for wraparound")
	}
}
