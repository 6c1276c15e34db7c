package client

import (
	"testing"
)

func TestQuery_Encode(t *testing.T) {
	ming := "ming"
	empty := ""

	tests := []struct {
		name  string
		build func(q *Query)
		want  string
	}{
		{
			name:  "empty",
			build: func(*Query) {},
			want:  "",
		},
		{
			name: "insertion order preserved",
			build: func(q *Query) {
				q.AddInt("skip", 0).AddInt("limit", 20).Add("dynasty_id", "ming")
			},
			want: "skip=0&limit=20&dynasty_id=ming",
		},
		{
			name: "nil optional omitted",
			build: func(q *Query) {
				q.AddInt("skip", 40).AddInt("limit", 20).AddOptional("dynasty_id", nil).AddOptional("emperor_id", &ming)
			},
			want: "skip=40&limit=20&emperor_id=ming",
		},
		{
			name: "empty string optional sent",
			build: func(q *Query) {
				q.AddOptional("event_type", &empty)
			},
			want: "event_type=",
		},
		{
			name: "values escaped",
			build: func(q *Query) {
				q.Add("event_type", "政治").Add("note", "a&b c")
			},
			want: "event_type=%E6%94%BF%E6%B2%BB&note=a%26b+c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Query
			tt.build(&q)
			if got := q.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_GetAndValues(t *testing.T) {
	var q Query
	q.AddInt("skip", 0).AddInt("limit", 100)

	if v, ok := q.Get("limit"); !ok || v != "100" {
		t.Errorf("Get(limit) = %q, %v", v, ok)
	}
	if _, ok := q.Get("dynasty_id"); ok {
		t.Error("Get(dynasty_id) should be absent")
	}
	if got := q.Values().Get("skip"); got != "0" {
		t.Errorf("Values().Get(skip) = %q", got)
	}
}
