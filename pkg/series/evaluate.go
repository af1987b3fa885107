// Package series evaluates one formula across a sequence of generations.
package series

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/filter"
	"github.com/wildfunctions/formula/pkg/history"
)

// Point is the outcome of one generation.
type Point struct {
	Generation int                 `json:"generation"`
	Value      decimal.NullDecimal `json:"value"`
	Validity   expr.Validity       `json:"validity"`
}

// Result holds the evaluation of a formula over all generations.
type Result struct {
	Formula  string                `json:"formula"`
	Points   []Point               `json:"points"`
	Counts   map[expr.Validity]int `json:"counts"`
	Duration time.Duration         `json:"duration"`
}

// Values returns the value of every point in order.
func (r Result) Values() []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(r.Points))
	for i, p := range r.Points {
		out[i] = p.Value
	}
	return out
}

// Evaluate pushes each frame into a history sized for node and evaluates
// node after every push. Points that are not OK carry no value.
func Evaluate(ctx context.Context, node expr.ExprNode, frames []history.Frame) (Result, error) {
	start := time.Now()
	h := history.New(node.VarSteps())
	res := Result{
		Formula: node.String(),
		Points:  make([]Point, 0, len(frames)),
		Counts:  make(map[expr.Validity]int),
	}

	for gen, frame := range frames {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("generation %d: %w", gen, err)
		}
		h.Push(frame)

		p := Point{Generation: gen}
		validity, err := node.Validate(h)
		if err != nil {
			return res, fmt.Errorf("generation %d: %w", gen, err)
		}
		p.Validity = validity
		if validity == expr.OK {
			p.Value, err = node.Evaluate(h)
			if err != nil {
				return res, fmt.Errorf("generation %d: %w", gen, err)
			}
		}
		res.Points = append(res.Points, p)
		res.Counts[p.Validity]++
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Smooth median-filters the values of r. Null values are skipped inside
// each window; a window of nulls stays null.
func Smooth(r Result, boundary filter.Boundary, window int) ([]decimal.NullDecimal, error) {
	out, err := filter.MedianFilter(r.Values(), boundary, filter.MedianNullDecimal, window)
	if err != nil {
		return nil, fmt.Errorf("smooth %s: %w", r.Formula, err)
	}
	return out, nil
}
