// Copyright (c) 2024 The ABLC Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package codegen

import (
	"sort"

	"github.com/samber/lo"

	"ablc/utils"
)

// span is an inclusive live range over block indices.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool { return s.start <= o.end && o.start <= s.end }

type varRange struct {
	name string
	span
}

type regRange struct {
	reg Reg
	span
}

// computeLiveRanges scans fn's blocks in flat order, using each block's
// position as the monotonic index: a live range only ever records the first
// and last block a name or physical register was touched in, never a finer
// instruction-level position.
func computeLiveRanges(fn *Fun) ([]*varRange, []*regRange) {
	var vars []*varRange
	byName := map[string]*varRange{}
	var regs []*regRange
	byReg := map[Reg]*regRange{}

	touch := func(name string, i int) {
		vr, ok := byName[name]
		if !ok {
			vr = &varRange{name: name, span: span{i, i}}
			byName[name] = vr
			vars = append(vars, vr)
			return
		}
		if i < vr.start {
			vr.start = i
		}
		if i > vr.end {
			vr.end = i
		}
	}
	touchReg := func(r Reg, i int) {
		rr, ok := byReg[r]
		if !ok {
			rr = &regRange{reg: r, span: span{i, i}}
			byReg[r] = rr
			regs = append(regs, rr)
			return
		}
		if i < rr.start {
			rr.start = i
		}
		if i > rr.end {
			rr.end = i
		}
	}
	// Explicit physical-register operands (parameter homing, call argument
	// setup) become constraint ranges too, so no variable lands in a register
	// the selector is still reading a value out of.
	touchArg := func(a Arg, i int) {
		switch a.Kind {
		case ArgStr:
			touch(a.Str, i)
		case ArgReg:
			touchReg(a.Reg, i)
		case ArgDeref:
			touchReg(a.Base, i)
		}
	}

	for i, blk := range fn.Blocks {
		for _, instr := range blk.Instrs.Slice() {
			touchArg(instr.Src, i)
			touchArg(instr.Dst, i)
			switch instr.Op {
			case OpIdivq:
				touchReg(RAX, i)
				touchReg(RDX, i)
			case OpCallq:
				for _, r := range CallerSaved {
					touchReg(r, i)
				}
			}
		}
	}
	return vars, regs
}

type activeAlloc struct {
	vr  *varRange
	reg Reg
}

// candidatePool is the allocator's search order: caller-saved registers
// first (lowest-ranked preferred), falling back to callee-saved only once
// those are exhausted, keeping save/restore traffic down.
var candidatePool = append(append([]Reg{}, CallerSaved...), CalleeSaved...)

// Allocate runs linear-scan register allocation over fn's pseudo code,
// returning a Str-name-to-location table, the callee-saved registers it
// actually put to use (in first-assigned order), and the number of spill
// slots it handed out.
func Allocate(fn *Fun) (homes map[string]Arg, calleeSaved []Reg, numSpilled int) {
	vars, regConstraints := computeLiveRanges(fn)
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].start < vars[j].start })

	homes = make(map[string]Arg, len(vars))
	usedCallee := utils.NewSet[Reg]()
	var active []activeAlloc

	for _, vr := range vars {
		active = lo.Filter(active, func(a activeAlloc, _ int) bool {
			return a.vr.end >= vr.start
		})

		busy := func(r Reg) bool {
			if lo.ContainsBy(regConstraints, func(c *regRange) bool {
				return c.reg == r && c.span.overlaps(vr.span)
			}) {
				return true
			}
			return lo.ContainsBy(active, func(a activeAlloc) bool { return a.reg == r })
		}

		chosen, ok := lo.Find(candidatePool, func(r Reg) bool {
			return !Reserved[r] && !busy(r)
		})
		if ok {
			homes[vr.name] = R(chosen)
			active = append(active, activeAlloc{vr: vr, reg: chosen})
			if lo.Contains(CalleeSaved, chosen) && usedCallee.Add(chosen) {
				calleeSaved = append(calleeSaved, chosen)
			}
			continue
		}
		numSpilled++
		homes[vr.name] = Deref(RBP, -int64(numSpilled)*8)
	}
	return homes, calleeSaved, numSpilled
}
