package product

import (
	"errors"
	"fmt"

	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
)

var ErrFieldMismatch = errors.New("product: curves are defined over different fields")

// EllipticProduct is the abelian surface E1 x E2.
type EllipticProduct struct {
	E1 *montgomery.Curve
	E2 *montgomery.Curve
}

// CouplePoint is a point (P1, P2) of E1 x E2.
type CouplePoint struct {
	P1 montgomery.Point
	P2 montgomery.Point
}

// XCouplePoint is the image of a CouplePoint on the product of Kummer lines.
// Each component is known up to sign.
type XCouplePoint struct {
	P1 montgomery.XPoint
	P2 montgomery.XPoint
}

// New pairs two curves defined over the same field.
func New(e1, e2 *montgomery.Curve) (*EllipticProduct, error) {
	if e1 == nil || e2 == nil {
		return nil, fmt.Errorf("product: nil curve")
	}
	if !e1.F.Equal(e2.F) {
		return nil, ErrFieldMismatch
	}
	return &EllipticProduct{E1: e1, E2: e2}, nil
}

// Field returns the common base field.
func (e *EllipticProduct) Field() *field.Field {
	return e.E1.F
}

// NewCouplePoint builds (P1, P2) from affine coordinates on each factor.
func (e *EllipticProduct) NewCouplePoint(x1, y1, x2, y2 field.Element) (CouplePoint, error) {
	p1, err := e.E1.NewPoint(x1, y1)
	if err != nil {
		return CouplePoint{}, fmt.Errorf("first factor: %w", err)
	}
	p2, err := e.E2.NewPoint(x2, y2)
	if err != nil {
		return CouplePoint{}, fmt.Errorf("second factor: %w", err)
	}
	return CouplePoint{P1: p1, P2: p2}, nil
}

// Identity returns (O, O).
func (e *EllipticProduct) Identity() CouplePoint {
	return CouplePoint{P1: e.E1.Identity(), P2: e.E2.Identity()}
}

// IsIdentity reports whether both components are the identity.
func (e *EllipticProduct) IsIdentity(p CouplePoint) bool {
	return p.P1.IsIdentity() && p.P2.IsIdentity()
}

// IsOnProduct reports whether each component lies on its curve.
func (e *EllipticProduct) IsOnProduct(p CouplePoint) bool {
	return e.E1.IsOnCurve(p.P1) && e.E2.IsOnCurve(p.P2)
}

// Equal compares p and q componentwise.
func (e *EllipticProduct) Equal(p, q CouplePoint) bool {
	return e.E1.Equal(p.P1, q.P1) && e.E2.Equal(p.P2, q.P2)
}

// Double doubles both components.
func (e *EllipticProduct) Double(p CouplePoint) CouplePoint {
	return CouplePoint{P1: e.E1.Double(p.P1), P2: e.E2.Double(p.P2)}
}

// DoubleIter computes [2^k]p componentwise.
func (e *EllipticProduct) DoubleIter(p CouplePoint, k int) CouplePoint {
	return CouplePoint{P1: e.E1.DoubleIter(p.P1, k), P2: e.E2.DoubleIter(p.P2, k)}
}

// Add adds componentwise.
func (e *EllipticProduct) Add(p, q CouplePoint) CouplePoint {
	return CouplePoint{P1: e.E1.Add(p.P1, q.P1), P2: e.E2.Add(p.P2, q.P2)}
}

// Neg negates both components.
func (e *EllipticProduct) Neg(p CouplePoint) CouplePoint {
	return CouplePoint{P1: e.E1.Neg(p.P1), P2: e.E2.Neg(p.P2)}
}

// Sub returns p - q.
func (e *EllipticProduct) Sub(p, q CouplePoint) CouplePoint {
	return e.Add(p, e.Neg(q))
}

// Order2Exponent returns e such that p has order exactly 2^e, i.e. the
// larger of the component exponents.
func (e *EllipticProduct) Order2Exponent(p CouplePoint, max int) (int, error) {
	e1, err := e.E1.Order2Exponent(p.P1, max)
	if err != nil {
		return 0, fmt.Errorf("first factor: %w", err)
	}
	e2, err := e.E2.Order2Exponent(p.P2, max)
	if err != nil {
		return 0, fmt.Errorf("second factor: %w", err)
	}
	if e1 > e2 {
		return e1, nil
	}
	return e2, nil
}

// XZ drops the y-coordinates.
func (p CouplePoint) XZ() XCouplePoint {
	return XCouplePoint{P1: p.P1.XZ(), P2: p.P2.XZ()}
}

// XEqual compares the Kummer images of p and q.
func (e *EllipticProduct) XEqual(p, q XCouplePoint) bool {
	return e.E1.XEqual(p.P1, q.P1) && e.E2.XEqual(p.P2, q.P2)
}

// XDouble doubles both Kummer components.
func (e *EllipticProduct) XDouble(p XCouplePoint) XCouplePoint {
	return XCouplePoint{P1: e.E1.XDouble(p.P1), P2: e.E2.XDouble(p.P2)}
}

// LiftX recovers a CouplePoint above p. Each component takes the y chosen
// by the field square root, so the result is one of up to four sign
// combinations.
func (e *EllipticProduct) LiftX(p XCouplePoint) (CouplePoint, error) {
	p1, err := liftComponent(e.E1, p.P1)
	if err != nil {
		return CouplePoint{}, fmt.Errorf("first factor: %w", err)
	}
	p2, err := liftComponent(e.E2, p.P2)
	if err != nil {
		return CouplePoint{}, fmt.Errorf("second factor: %w", err)
	}
	return CouplePoint{P1: p1, P2: p2}, nil
}

func liftComponent(c *montgomery.Curve, p montgomery.XPoint) (montgomery.Point, error) {
	if p.IsIdentity() {
		return c.Identity(), nil
	}
	x, err := c.AffineX(p)
	if err != nil {
		return montgomery.Point{}, err
	}
	return c.LiftX(x)
}
