/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package search

import (
	"reflect"
	"testing"
)

func TestWalkVisitsAllLeaves(t *testing.T) {
	expr := Expr{Kind: ExprAnd, Children: []Expr{
		{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "alpha"}},
		{Kind: ExprOr, Children: []Expr{
			{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "beta"}},
			{Kind: ExprNot, Child: &Expr{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "gamma"}}},
		}},
	}}

	var got []string
	expr.Walk(func(term Term) { got = append(got, term.Text) })

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Walk() visited %v, want %v", got, want)
	}
}

func TestCollectFieldsOnlyReturnsFieldTerms(t *testing.T) {
	expr := Expr{Kind: ExprAnd, Children: []Expr{
		{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "alpha"}},
		{Kind: ExprTerm, Term: Term{Field: FieldURI, Text: "file://x"}},
	}}
	fields := expr.CollectFields()
	if len(fields) != 1 || fields[0].Field != FieldURI {
		t.Fatalf("CollectFields() = %v, want one FieldURI term", fields)
	}
}

func TestCollectTextOnlyReturnsFreeText(t *testing.T) {
	expr := Expr{Kind: ExprAnd, Children: []Expr{
		{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "alpha"}},
		{Kind: ExprTerm, Term: Term{Field: FieldURI, Text: "file://x"}},
		{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "beta"}},
	}}
	text := expr.CollectText()
	want := []string{"alpha", "beta"}
	if !reflect.DeepEqual(text, want) {
		t.Fatalf("CollectText() = %v, want %v", text, want)
	}
}

func TestCollectFieldsEmptyWhenNone(t *testing.T) {
	expr := Expr{Kind: ExprTerm, Term: Term{Kind: TermWord, Text: "alpha"}}
	if fields := expr.CollectFields(); fields != nil {
		t.Fatalf("CollectFields() = %v, want nil", fields)
	}
}
