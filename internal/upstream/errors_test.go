package upstream

import (
	"strings"
	"testing"
)

func TestExtractMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "flat detail",
			body: `{"detail": "Test topilmadi"}`,
			want: "Test topilmadi",
		},
		{
			name: "field errors with translated labels",
			body: `{"title": ["Bu maydon talab qilinadi."]}`,
			want: "Test nomi Bu maydon talab qilinadi.",
		},
		{
			name: "nested question errors with one-based numbering",
			body: `{"questions": {"2": {"correct_answer": ["Noto'g'ri format"]}}}`,
			want: "Savollar: 3-savol: Javob Noto'g'ri format",
		},
		{
			name: "detail wins over other fields",
			body: `{"detail": "Ruxsat yo'q", "title": ["Bu maydon talab qilinadi."]}`,
			want: "Ruxsat yo'q",
		},
		{
			name: "list of strings joined with pipes",
			body: `["birinchi xato", "ikkinchi xato"]`,
			want: "birinchi xato | ikkinchi xato",
		},
		{
			name: "multiple fields joined with pipes",
			body: `{"title": ["Bu maydon talab qilinadi."], "points": ["Noto'g'ri qiymat"]}`,
			want: "Ball Noto'g'ri qiymat | Test nomi Bu maydon talab qilinadi.",
		},
		{
			name: "bare string body",
			body: `"yagona xato"`,
			want: "yagona xato",
		},
		{
			name: "non-json short body passes through",
			body: "Bad Gateway",
			want: "Bad Gateway",
		},
		{
			name: "html body falls back",
			body: "<html><body>502</body></html>",
			want: msgGenericError,
		},
		{
			name: "empty object falls back",
			body: `{}`,
			want: msgDataError,
		},
		{
			name: "empty body falls back",
			body: "",
			want: msgGenericError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("ExtractMessage(%s) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}
}

func TestExtractMessageQuestionOrder(t *testing.T) {
	body := `{"questions": {"10": ["o'ninchi"], "2": ["ikkinchi"]}}`
	got := ExtractMessage([]byte(body))
	if !strings.Contains(got, "3-savol: ikkinchi") {
		t.Errorf("missing translated second question: %q", got)
	}
	if strings.Index(got, "3-savol") > strings.Index(got, "11-savol") {
		t.Errorf("numeric keys out of order: %q", got)
	}
}
