package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine_selfSimilarity(t *testing.T) {
	a := []float32{0.3, -0.7, 0.2}
	sim, err := Cosine(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim-1.0) > 1e-6 {
		t.Errorf("sim(a,a)=%f, want 1", sim)
	}
}

func TestCosine_symmetric(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 1}
	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("sim(a,b)=%f != sim(b,a)=%f", ab, ba)
	}
}

func TestCosine_zeroMagnitude(t *testing.T) {
	zero := []float32{0, 0, 0}
	a := []float32{1, 2, 3}
	sim, err := Cosine(zero, a)
	if err != nil {
		t.Fatal(err)
	}
	if sim != 0 {
		t.Errorf("sim(zero,a)=%f, want 0", sim)
	}
	sim, err = Cosine(zero, zero)
	if err != nil {
		t.Fatal(err)
	}
	if sim != 0 {
		t.Errorf("sim(zero,zero)=%f, want 0", sim)
	}
}

func TestCosine_orthogonalAndOpposite(t *testing.T) {
	x := []float32{1, 0}
	y := []float32{0, 1}
	sim, err := Cosine(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim) > 1e-6 {
		t.Errorf("orthogonal sim=%f, want 0", sim)
	}
	neg := []float32{-1, 0}
	sim, err = Cosine(x, neg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(sim+1) > 1e-6 {
		t.Errorf("opposite sim=%f, want -1", sim)
	}
}

func TestCosine_dimensionMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if err == nil {
		t.Fatal("expected error")
	}
	var mismatch *DimensionMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if mismatch.Want != 2 || mismatch.Got != 3 {
		t.Errorf("mismatch=%+v", mismatch)
	}
}

func TestL2Norm(t *testing.T) {
	if n := L2Norm([]float32{3, 4}); math.Abs(n-5) > 1e-9 {
		t.Errorf("L2Norm=%f, want 5", n)
	}
	if n := L2Norm(nil); n != 0 {
		t.Errorf("L2Norm(nil)=%f", n)
	}
}
