package diag

import (
	"testing"

	"ember/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	ReportError(r, SemaTypeMismatch, source.Span{File: 1, Start: 5, End: 6}, "b").Emit()
	ReportWarning(r, SynExpectSemicolon, source.Span{File: 0, Start: 9, End: 9}, "a").Emit()
	NewReportBuilder(r, SevInfo, SemaPoisonedDependency, source.Span{File: 1, Start: 5, End: 6}, "c").Emit()
	if bag.Add(NewError(SemaMissingReturn, source.Span{}, "over")) {
		t.Fatalf("expected limit to reject fourth diagnostic")
	}

	bag.Sort()
	items := bag.Items()
	if items[0].Code != SynExpectSemicolon || items[1].Code != SemaTypeMismatch || items[2].Code != SemaPoisonedDependency {
		t.Fatalf("unexpected order: %v", items)
	}
	if !bag.HasErrors() || bag.Count(SevWarning) != 2 {
		t.Fatalf("unexpected counts")
	}
	bag.Filter(SevWarning)
	if bag.Len() != 2 {
		t.Fatalf("filter kept %d", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, SemaDuplicateSymbol, source.Span{}, "dup").
		WithNote(source.Span{Start: 1, End: 2}, "first declared here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatalf("note lost")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		r.Report(SemaUnresolvedSymbol, SevError, source.Span{Start: 1, End: 4}, "unknown symbol foo", nil, nil)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected dedup to keep one diagnostic, got %d", bag.Len())
	}
}

func TestDependentPointsAtRoot(t *testing.T) {
	root := Failf(SemaUnresolvedSymbol, source.Span{Start: 3, End: 6}, "unknown symbol %q", "Foo")
	mid := Dependent(source.Span{Start: 10, End: 12}, "function bar", root)
	top := Dependent(source.Span{Start: 20, End: 22}, "function baz", mid)
	if top.Root() != root {
		t.Fatalf("root not preserved")
	}
	if top.Diag.Severity != SevInfo || top.Code() != SemaPoisonedDependency {
		t.Fatalf("dependent must be informational, got %v %v", top.Diag.Severity, top.Code())
	}
	if len(top.Diag.Notes) != 1 || top.Diag.Notes[0].Span != root.Diag.Primary {
		t.Fatalf("dependent note must point at root")
	}
	if !IsCode(top, SemaPoisonedDependency) {
		t.Fatalf("IsCode failed")
	}
}

func TestSeverityOrder(t *testing.T) {
	if !SevError.AtLeast(SevWarning) || SevInfo.AtLeast(SevWarning) || !SevInfo.AtLeast(SevInfo) {
		t.Fatalf("severity order broken")
	}
	if SevWarning.String() != "WARNING" || Severity(9).String() != "UNKNOWN" {
		t.Fatalf("names: %s %s", SevWarning, Severity(9))
	}
}
