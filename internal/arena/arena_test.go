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
package arena

import "testing"

type node struct {
	val  int
	next *node
}

func TestAllocZeroed(t *testing.T) {
	a := New()
	n := Alloc[node](a)
	if n.val != 0 || n.next != nil {
		t.Fatalf("expected zeroed node, got %+v", n)
	}
}

func TestAllocGrowsPages(t *testing.T) {
	a := NewSized(64)
	for i := 0; i < 100; i++ {
		n := Alloc[node](a)
		n.val = i
	}
	if a.PageCount() < 2 {
		t.Fatalf("expected multiple pages, got %d", a.PageCount())
	}
}

func TestDestroyDropsPages(t *testing.T) {
	a := New()
	Alloc[node](a)
	Alloc[node](a)
	a.Destroy()
	if a.PageCount() != 0 {
		t.Fatalf("expected 0 pages after destroy, got %d", a.PageCount())
	}
}

func TestVectorPushAndInsert(t *testing.T) {
	a := New()
	v := NewVector[int](a, 0)
	v.Push(1)
	v.Push(2)
	v.Push(4)
	two := v.At(1)
	v.InsertAfter(two, 3)
	if got := v.Slice(); len(got) != 4 || got[0] != 1 || got[1] != 2 || got[2] != 3 || got[3] != 4 {
		t.Fatalf("unexpected vector contents: %v", got)
	}
}

func TestVectorInsertBeforeAndRemove(t *testing.T) {
	a := New()
	v := NewVector[int](a, 0)
	v.Push(1)
	v.Push(3)
	three := v.At(1)
	v.InsertBefore(three, 2)
	if got := v.Slice(); len(got) != 3 || got[1] != 2 {
		t.Fatalf("unexpected vector contents after insert: %v", got)
	}
	middle := v.At(1)
	v.RemoveAt(middle)
	if got := v.Slice(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected vector contents after remove: %v", got)
	}
}

func TestVectorMigrate(t *testing.T) {
	src := New()
	dst := New()
	v := NewVector[int](src, 0)
	v.Push(1)
	v.Push(2)
	nv := v.Migrate(dst)
	src.Destroy()
	if got := nv.Slice(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("vector did not survive migration: %v", got)
	}
}
