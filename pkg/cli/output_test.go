package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

func sampleTable() *Table {
	return &Table{
		Headers: []string{"id", "route", "status"},
		Rows: [][]string{
			{"a1", "health", "200"},
			{"b2", "completion", "500"},
		},
	}
}

func TestTextFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestTextFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (&TextFormatter{}).FormatTo(buf, sampleTable()); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "id  route       status\n" +
		"a1  health      200\n" +
		"b2  completion  500\n"
	if buf.String() != want {
		t.Errorf("FormatTo() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		data   any
		indent bool
		want   string
	}{
		{"string", "test", false, `"test"`},
		{"map", map[string]string{"version": "dev"}, false, `{"version":"dev"}`},
		{"table", sampleTable(), false,
			`[{"id":"a1","route":"health","status":"200"},{"id":"b2","route":"completion","status":"500"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if err := (&JSONFormatter{Indent: tt.indent}).FormatTo(buf, tt.data); err != nil {
				t.Fatalf("FormatTo() error = %v", err)
			}
			if got := bytes.TrimSpace(buf.Bytes()); string(got) != tt.want {
				t.Errorf("FormatTo() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestJSONFormatter_Indent(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatJSON).FormatTo(buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n  \"a\": 1")) {
		t.Errorf("output not indented: %q", buf.String())
	}
	var out map[string]int
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Errorf("output is not valid JSON: %v", err)
	}
}

func TestCSVFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"c3", "not,found", "404"})

	if err := (&CSVFormatter{}).FormatTo(buf, table); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	want := "id,route,status\na1,health,200\nb2,completion,500\nc3,\"not,found\",404\n"
	if buf.String() != want {
		t.Errorf("FormatTo() = %q, want %q", buf.String(), want)
	}
}

func TestCSVFormatter_RequiresTable(t *testing.T) {
	if err := (&CSVFormatter{}).FormatTo(&bytes.Buffer{}, "not a table"); err == nil {
		t.Error("FormatTo() with non-table data succeeded")
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{"yaml", "*cli.TextFormatter"},
	}
	for _, tt := range tests {
		got := NewFormatter(tt.format)
		if typeName(got) != tt.want {
			t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, typeName(got), tt.want)
		}
	}
}

func typeName(f Formatter) string {
	switch f.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	}
	return "unknown"
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"csv", FormatCSV, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
