package curves

// BezierCurve is a chain of Bezier segments flattened by adaptive
// subdivision.
type BezierCurve struct {
	polyline
	segments int
}

// NewBezier flattens the control points. With allowDuplicate a repeated
// control point (red anchor) ends one segment and starts the next;
// otherwise the points form a single Bezier of degree len(points)-1.
func NewBezier(points []Vec, allowDuplicate bool) *BezierCurve {
	segs := [][]Vec{points}
	if allowDuplicate {
		segs = splitAnchors(points)
	}
	var poly []Vec
	for si, seg := range segs {
		pts := approximateBezier(seg)
		// Avoid duplicating the shared point between consecutive Bezier segments.
		if si > 0 && len(pts) > 0 && len(poly) > 0 && almostEq(poly[len(poly)-1], pts[0]) {
			pts = pts[1:]
		}
		poly = append(poly, pts...)
	}
	return &BezierCurve{polyline: newPolyline(poly), segments: len(segs)}
}

// Segments is the number of Bezier pieces after anchor splitting.
func (c *BezierCurve) Segments() int { return c.segments }

func splitAnchors(points []Vec) [][]Vec {
	var segs [][]Vec
	cur := []Vec{points[0]}
	for _, p := range points[1:] {
		if almostEq(p, cur[len(cur)-1]) {
			if len(cur) >= 2 {
				segs = append(segs, cur)
			}
			cur = []Vec{p}
			continue
		}
		cur = append(cur, p)
	}
	if len(cur) >= 2 || len(segs) == 0 {
		segs = append(segs, cur)
	}
	return segs
}

// adaptive subdivision, identical strategy to lazer
func approximateBezier(cp []Vec) []Vec {
	if len(cp) < 2 {
		return cp
	}
	var out []Vec
	stack := make([][]Vec, 0, 32)
	stack = append(stack, cp)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if bezierFlatEnough(cur) {
			out = append(out, cur[0])
			continue
		}
		// right half is pushed first so the left half is emitted first
		l, r := bezierSubdivide(cur)
		stack = append(stack, r, l)
	}
	out = append(out, cp[len(cp)-1])
	return out
}

func bezierFlatEnough(cp []Vec) bool {
	for i := 1; i < len(cp)-1; i++ {
		dx := cp[i-1].X - 2*cp[i].X + cp[i+1].X
		dy := cp[i-1].Y - 2*cp[i].Y + cp[i+1].Y
		if dx*dx+dy*dy > bezTolSq {
			return false
		}
	}
	return true
}

// bezierSubdivide splits cp at t=0.5 with de Casteljau's triangle.
func bezierSubdivide(cp []Vec) (left, right []Vec) {
	n := len(cp)
	row := make([]Vec, n)
	copy(row, cp)
	left = make([]Vec, n)
	right = make([]Vec, n)
	for r := 0; r < n; r++ {
		left[r] = row[0]
		right[n-1-r] = row[n-1-r]
		for i := 0; i < n-1-r; i++ {
			row[i] = Vec{(row[i].X + row[i+1].X) * 0.5, (row[i].Y + row[i+1].Y) * 0.5}
		}
	}
	return left, right
}
