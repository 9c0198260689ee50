/*
Copyright 2023 The aurochs Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package content

import (
	"github.com/pkg/errors"

	"github.com/trkbt10/aurochs/pkg/log"
	"github.com/trkbt10/aurochs/pkg/types"
)

var errExtGStateCorrupt = errors.New("aurochs: content: corrupt ExtGState")

// applyExtGState merges the named ExtGState resource into the current state.
func (ip *Interpreter) applyExtGState(name string) error {
	if ip.resources == nil {
		return nil
	}

	o, found := ip.resources.Find("ExtGState")
	if !found {
		return nil
	}

	gsDict, err := ip.ctx.DereferenceDict(o)
	if err != nil || gsDict == nil {
		return err
	}

	entry, found := gsDict.Find(name)
	if !found {
		if log.InfoEnabled() {
			log.Info.Printf("content: unknown ExtGState %q\n", name)
		}
		return nil
	}

	d, err := ip.ctx.DereferenceDict(entry)
	if err != nil {
		return err
	}
	if d == nil {
		return errExtGStateCorrupt
	}

	if v := d.FloatEntry("ca"); v != nil {
		ip.state.FillAlpha = *v
	}
	if v := d.FloatEntry("CA"); v != nil {
		ip.state.StrokeAlpha = *v
	}
	if bm := d.NameEntry("BM"); bm != nil {
		ip.state.BlendMode = *bm
	}
	if v := d.FloatEntry("LW"); v != nil {
		ip.state.Line.Width = *v
	}
	if v := d.IntEntry("LC"); v != nil {
		ip.state.Line.Cap = *v
	}
	if v := d.IntEntry("LJ"); v != nil {
		ip.state.Line.Join = *v
	}
	if v := d.FloatEntry("ML"); v != nil {
		ip.state.Line.MiterLimit = *v
	}
	if a := d.ArrayEntry("D"); len(a) == 2 {
		if dash, ok := a[0].(types.Array); ok {
			arr := make([]float64, 0, len(dash))
			for i := range dash {
				if v, ok := dash.FloatValue(i); ok {
					arr = append(arr, v)
				}
			}
			ip.state.Line.DashArray = arr
		}
		if phase, ok := a.FloatValue(1); ok {
			ip.state.Line.DashPhase = phase
		}
	}

	if o, found := d.Find("SMask"); found {
		if err := ip.applySMask(o); err != nil {
			return err
		}
	}

	return nil
}

func (ip *Interpreter) applySMask(o types.Object) error {
	o, err := ip.ctx.Dereference(o)
	if err != nil {
		return err
	}

	// /SMask /None clears any active soft mask.
	if n, ok := o.(types.Name); ok {
		if n.Value() == "None" {
			ip.state.SoftMask = nil
			ip.state.SoftMaskAlpha = 1
		}
		return nil
	}

	d, ok := o.(types.Dict)
	if !ok {
		return errExtGStateCorrupt
	}

	mask, constant, err := ip.extractSoftMask(d)
	if err != nil {
		return err
	}

	if constant != nil {
		ip.state.SoftMask = nil
		ip.state.SoftMaskAlpha = *constant
		return nil
	}

	ip.state.SoftMask = mask
	return nil
}
