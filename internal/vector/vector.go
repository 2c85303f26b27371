// Package vector loads chain test vectors from YAML or TOML files.
//
// Field elements are hexadecimal strings of the little-endian re || im
// encoding; the prime is big-endian hexadecimal.
package vector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-theta-isogeny/internal/chain"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/field"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/montgomery"
	"github.com/smallyu/go-theta-isogeny/internal/crypto/product"
)

// Identity marks the identity in an expected image.
const Identity = "inf"

// Point is an affine point with hexadecimal coordinates.
type Point struct {
	X string `yaml:"x" toml:"x" json:"x"`
	Y string `yaml:"y" toml:"y" json:"y"`
}

// Couple is a point on E1 x E2.
type Couple struct {
	P1 Point `yaml:"p1" toml:"p1" json:"p1"`
	P2 Point `yaml:"p2" toml:"p2" json:"p2"`
}

// Image holds the affine x of both components of an image, or Identity.
type Image struct {
	X1 string `yaml:"x1" toml:"x1" json:"x1"`
	X2 string `yaml:"x2" toml:"x2" json:"x2"`
}

// Expected is either the codomain and image x values or an error name.
type Expected struct {
	A1     string  `yaml:"a1" toml:"a1" json:"a1"`
	A2     string  `yaml:"a2" toml:"a2" json:"a2"`
	Images []Image `yaml:"images" toml:"images" json:"images"`
	// Error names the failure the chain must report instead.
	Error string `yaml:"error" toml:"error" json:"error,omitempty"`
}

// File is the serialised form of a vector.
type File struct {
	Name     string   `yaml:"name" toml:"name" json:"name"`
	Prime    string   `yaml:"prime" toml:"prime" json:"prime"`
	N        int      `yaml:"n" toml:"n" json:"n"`
	A1       string   `yaml:"a1" toml:"a1" json:"a1"`
	A2       string   `yaml:"a2" toml:"a2" json:"a2"`
	Kernel1  Couple   `yaml:"kernel1" toml:"kernel1" json:"kernel1"`
	Kernel2  Couple   `yaml:"kernel2" toml:"kernel2" json:"kernel2"`
	Aux      []Couple `yaml:"aux" toml:"aux" json:"aux"`
	Strategy []int    `yaml:"strategy" toml:"strategy" json:"strategy"`
	Flags    []bool   `yaml:"flags" toml:"flags" json:"flags"`
	Expected Expected `yaml:"expected" toml:"expected" json:"expected"`
}

// Load reads a vector, choosing the decoder by file extension.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read vector")
	}
	v, err := Parse(raw, filepath.Ext(path))
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	if v.Name == "" {
		v.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return v, nil
}

// Parse decodes a vector in the given format: yaml, toml or json, with or
// without a leading dot.
func Parse(raw []byte, format string) (*File, error) {
	var (
		v   File
		err error
	)
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "yaml", "yml", "json":
		// yaml.v3 reads JSON documents as flow-style YAML.
		err = yaml.Unmarshal(raw, &v)
	case "toml":
		err = toml.Unmarshal(raw, &v)
	default:
		return nil, errors.Errorf("unsupported vector format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Case is a decoded vector ready to run.
type Case struct {
	Name    string
	Field   *field.Field
	Product *product.EllipticProduct
	Input   chain.Input

	WantA1, WantA2 field.Element
	// WantImages holds the affine x of each image component; a nil entry
	// is the identity.
	WantImages [][2]*field.Element
	WantError  error

	hasResult bool
}

var expectedErrors = map[string]error{
	"malformed-kernel":         chain.ErrMalformedKernel,
	"degenerate-step":          chain.ErrDegenerateStep,
	"degenerate-step-mismatch": chain.ErrDegenerateStepMismatch,
	"strategy-length":          chain.ErrStrategyLengthMismatch,
	"flag-length":              chain.ErrFlagLengthMismatch,
	"not-product":              chain.ErrNotProduct,
	"invalid-parameters":       chain.ErrInvalidParameters,
}

// Case decodes every field element and point of v. A vector without an
// expected section still decodes but cannot be checked.
func (v *File) Case() (*Case, error) {
	f, err := field.NewFromHex(v.Prime)
	if err != nil {
		return nil, errors.Wrap(err, "prime")
	}
	c := &Case{Name: v.Name, Field: f}

	curve := func(name, s string) (*montgomery.Curve, error) {
		a, err := f.DecodeHex(s)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		e, err := montgomery.NewCurve(f, a)
		return e, errors.Wrap(err, name)
	}
	e1, err := curve("a1", v.A1)
	if err != nil {
		return nil, err
	}
	e2, err := curve("a2", v.A2)
	if err != nil {
		return nil, err
	}
	if c.Product, err = product.New(e1, e2); err != nil {
		return nil, errors.Wrap(err, "product")
	}

	couple := func(name string, cp Couple) (product.CouplePoint, error) {
		var xy [4]field.Element
		for i, s := range []string{cp.P1.X, cp.P1.Y, cp.P2.X, cp.P2.Y} {
			if xy[i], err = f.DecodeHex(s); err != nil {
				return product.CouplePoint{}, errors.Wrap(err, name)
			}
		}
		p, err := c.Product.NewCouplePoint(xy[0], xy[1], xy[2], xy[3])
		return p, errors.Wrap(err, name)
	}
	in := chain.Input{Product: c.Product, N: v.N, Strategy: v.Strategy, Flags: v.Flags}
	if in.K1, err = couple("kernel1", v.Kernel1); err != nil {
		return nil, err
	}
	if in.K2, err = couple("kernel2", v.Kernel2); err != nil {
		return nil, err
	}
	for i, a := range v.Aux {
		p, err := couple("aux", a)
		if err != nil {
			return nil, errors.Wrapf(err, "aux %d", i)
		}
		in.Aux = append(in.Aux, p)
	}
	if in.Strategy == nil {
		in.Strategy = []int{}
	}
	c.Input = in

	if name := v.Expected.Error; name != "" {
		want, ok := expectedErrors[name]
		if !ok {
			return nil, errors.Errorf("unknown expected error %q", name)
		}
		c.WantError = want
		return c, nil
	}
	if v.Expected.A1 == "" && v.Expected.A2 == "" && len(v.Expected.Images) == 0 {
		return c, nil
	}
	c.hasResult = true
	if c.WantA1, err = f.DecodeHex(v.Expected.A1); err != nil {
		return nil, errors.Wrap(err, "expected a1")
	}
	if c.WantA2, err = f.DecodeHex(v.Expected.A2); err != nil {
		return nil, errors.Wrap(err, "expected a2")
	}
	for i, img := range v.Expected.Images {
		var xs [2]*field.Element
		for j, s := range []string{img.X1, img.X2} {
			if s == Identity {
				continue
			}
			x, err := f.DecodeHex(s)
			if err != nil {
				return nil, errors.Wrapf(err, "expected image %d", i)
			}
			xs[j] = &x
		}
		c.WantImages = append(c.WantImages, xs)
	}
	return c, nil
}

// Check compares a chain result with the expected codomain and images.
func (c *Case) Check(res *chain.Result) error {
	if c.WantError != nil {
		return errors.Errorf("expected %v, chain succeeded", c.WantError)
	}
	if !c.hasResult {
		return errors.New("vector has no expected result")
	}
	if !res.Product.E1.A.Equal(c.WantA1) {
		return errors.Errorf("a1 = %s, want %s", c.Field.EncodeHex(res.Product.E1.A), c.Field.EncodeHex(c.WantA1))
	}
	if !res.Product.E2.A.Equal(c.WantA2) {
		return errors.Errorf("a2 = %s, want %s", c.Field.EncodeHex(res.Product.E2.A), c.Field.EncodeHex(c.WantA2))
	}
	if len(res.Images) != len(c.WantImages) {
		return errors.Errorf("%d images, want %d", len(res.Images), len(c.WantImages))
	}
	for i, img := range res.Images {
		got := [2]montgomery.XPoint{img.P1, img.P2}
		curves := [2]*montgomery.Curve{res.Product.E1, res.Product.E2}
		for j := range got {
			want := c.WantImages[i][j]
			if want == nil {
				if !got[j].IsIdentity() {
					return errors.Errorf("image %d factor %d is not the identity", i, j+1)
				}
				continue
			}
			x, err := curves[j].AffineX(got[j])
			if err != nil {
				return errors.Wrapf(err, "image %d factor %d", i, j+1)
			}
			if !x.Equal(*want) {
				return errors.Errorf("image %d factor %d: x = %s, want %s", i, j+1, c.Field.EncodeHex(x), c.Field.EncodeHex(*want))
			}
		}
	}
	return nil
}

// EncodeImages renders images in the form used by Expected.
func EncodeImages(e *product.EllipticProduct, images []product.XCouplePoint) ([]Image, error) {
	f := e.Field()
	x := func(curve *montgomery.Curve, p montgomery.XPoint) (string, error) {
		if p.IsIdentity() {
			return Identity, nil
		}
		v, err := curve.AffineX(p)
		if err != nil {
			return "", err
		}
		return f.EncodeHex(v), nil
	}
	out := make([]Image, len(images))
	for i, p := range images {
		var err error
		if out[i].X1, err = x(e.E1, p.P1); err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
		if out[i].X2, err = x(e.E2, p.P2); err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
	}
	return out, nil
}

// FromResult renders a chain result as the Expected section of a vector.
func FromResult(res *chain.Result) (Expected, error) {
	f := res.Product.Field()
	images, err := EncodeImages(res.Product, res.Images)
	if err != nil {
		return Expected{}, err
	}
	return Expected{
		A1:     f.EncodeHex(res.Product.E1.A),
		A2:     f.EncodeHex(res.Product.E2.A),
		Images: images,
	}, nil
}
