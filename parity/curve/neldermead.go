package curve

import (
	"fmt"
	"math"
)

// Nelder-Mead coefficients (standard values).
const (
	nmReflect  = 1.0
	nmExpand   = 2.0
	nmContract = 0.5
	nmShrink   = 0.5
)

// Objective is a scalar function of a parameter vector. Out-of-bound
// regions are handled by returning large penalty values.
type Objective func(x []float64) float64

// Minimize runs a Nelder-Mead simplex search from start with the given
// initial step per dimension. It stops when the simplex function spread
// drops below tol or the iteration budget is exhausted; the best vertex so
// far is always returned alongside the iteration count.
//
// NaN objective values are treated as +Inf, so a pathological region cannot
// capture the simplex.
func Minimize(f Objective, start, step []float64, maxIter int, tol float64) ([]float64, int, error) {
	n := len(start)
	if n == 0 {
		return nil, 0, fmt.Errorf("Minimize: empty start vector")
	}
	if len(step) != n {
		return nil, 0, fmt.Errorf("Minimize: step dimension %d != %d", len(step), n)
	}

	eval := func(x []float64) float64 {
		v := f(x)
		if math.IsNaN(v) {
			return math.Inf(1)
		}
		return v
	}

	// Initial simplex: start plus one step along each axis.
	verts := make([][]float64, n+1)
	vals := make([]float64, n+1)
	verts[0] = append([]float64(nil), start...)
	vals[0] = eval(verts[0])
	for i := 0; i < n; i++ {
		v := append([]float64(nil), start...)
		if step[i] != 0 {
			v[i] += step[i]
		} else {
			v[i] += 1e-3
		}
		verts[i+1] = v
		vals[i+1] = eval(v)
	}

	order := func() {
		// Insertion sort: the simplex is small and nearly sorted.
		for i := 1; i < len(vals); i++ {
			for j := i; j > 0 && vals[j] < vals[j-1]; j-- {
				vals[j], vals[j-1] = vals[j-1], vals[j]
				verts[j], verts[j-1] = verts[j-1], verts[j]
			}
		}
	}
	order()

	centroid := make([]float64, n)
	trial := make([]float64, n)

	iter := 0
	for ; iter < maxIter; iter++ {
		if spread(vals) < tol {
			break
		}

		// Centroid of all but the worst vertex.
		for j := 0; j < n; j++ {
			centroid[j] = 0
			for i := 0; i < n; i++ {
				centroid[j] += verts[i][j]
			}
			centroid[j] /= float64(n)
		}

		worst := vals[n]
		mix(trial, centroid, verts[n], nmReflect)
		fr := eval(trial)

		switch {
		case fr < vals[0]:
			// Try expanding past the reflection.
			expanded := make([]float64, n)
			mix(expanded, centroid, verts[n], nmExpand)
			if fe := eval(expanded); fe < fr {
				copy(verts[n], expanded)
				vals[n] = fe
			} else {
				copy(verts[n], trial)
				vals[n] = fr
			}
		case fr < vals[n-1]:
			copy(verts[n], trial)
			vals[n] = fr
		default:
			// Contract toward the centroid.
			mix(trial, centroid, verts[n], -nmContract)
			if fc := eval(trial); fc < worst {
				copy(verts[n], trial)
				vals[n] = fc
			} else {
				// Shrink everything toward the best vertex.
				for i := 1; i <= n; i++ {
					for j := 0; j < n; j++ {
						verts[i][j] = verts[0][j] + nmShrink*(verts[i][j]-verts[0][j])
					}
					vals[i] = eval(verts[i])
				}
			}
		}
		order()
	}

	best := append([]float64(nil), verts[0]...)
	if math.IsInf(vals[0], 1) {
		return best, iter, fmt.Errorf("Minimize: objective unbounded over the explored region")
	}
	return best, iter, nil
}

// mix writes centroid + coeff*(centroid − worst) into dst. A negative
// coefficient contracts toward the centroid.
func mix(dst, centroid, worst []float64, coeff float64) {
	for j := range dst {
		dst[j] = centroid[j] + coeff*(centroid[j]-worst[j])
	}
}

func spread(vals []float64) float64 {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if math.IsInf(v, 1) {
			return math.Inf(1)
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}
