// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lut

// SpacingTable samples a function at size points spread exactly from Lower
// to Upper. An address costs one subtraction and one multiply.
type SpacingTable struct {
	domain  Domain
	lower   float32
	scale   float32
	samples []float32
}

// BuildSpacing builds a table of 2^bits samples with the first at d.Lower
// and the last at d.Upper.
func BuildSpacing(f Func, d Domain, bits int) (*SpacingTable, error) {
	if err := checkBits(bits); err != nil {
		return nil, err
	}
	if err := d.validate(); err != nil {
		return nil, err
	}

	size := 1 << bits
	step := d.Width() / float64(size-1)
	t := &SpacingTable{
		domain:  d,
		lower:   float32(d.Lower),
		scale:   float32(float64(size-1) / d.Width()),
		samples: make([]float32, size+1),
	}
	for i := range t.samples {
		t.samples[i] = sample32(f, d.Lower+float64(i)*step)
	}
	return t, nil
}

// Scale returns the spacing factor (size-1)/(upper-lower).
func (t *SpacingTable) Scale() float32 { return t.scale }

// Domain returns the covered domain.
func (t *SpacingTable) Domain() Domain { return t.domain }

func (t *SpacingTable) Size() int { return len(t.samples) - 1 }

func (t *SpacingTable) Samples() []float32 { return t.samples }

func (t *SpacingTable) Rebind(samples []float32) (Table, error) {
	if err := checkSamples(len(t.samples), len(samples)); err != nil {
		return nil, err
	}
	c := *t
	c.samples = samples
	return &c, nil
}

func (t *SpacingTable) Nearest(x float32) float32 {
	a := (x - t.lower) * t.scale
	return t.samples[int(a+0.5)]
}

func (t *SpacingTable) Interp(x float32) float32 {
	a := (x - t.lower) * t.scale
	i := int(a)
	return lerp(t.samples[i], t.samples[i+1], a-float32(i))
}
