// Package report renders engine results as markdown and HTML documents.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"insightflow/domain/insight"
	"insightflow/internal/engine"
	"insightflow/internal/recommend"
)

// DefaultTopRelations bounds the relation table
const DefaultTopRelations = 10

// Document collects what a report shows. Nil sections are omitted.
type Document struct {
	Title          string
	Request        *engine.ExplainRequest
	Result         *engine.ExplainResult
	Relations      *engine.Relations
	Recommendation *recommend.Result
	TopRelations   int
}

// Markdown renders the document as GitHub-flavoured markdown
func Markdown(doc Document) []byte {
	var b bytes.Buffer
	title := doc.Title
	if title == "" {
		title = "Insight report"
	}
	fmt.Fprintf(&b, "# %s\n\n", text(title))

	if doc.Request != nil {
		writeRequest(&b, doc.Request)
	}
	if doc.Result != nil {
		writeInsights(&b, doc.Result)
	}
	if doc.Relations != nil {
		top := doc.TopRelations
		if top <= 0 {
			top = DefaultTopRelations
		}
		writeRelations(&b, doc.Relations, top)
	}
	if doc.Recommendation != nil {
		writeRecommendation(&b, doc.Recommendation)
	}
	return b.Bytes()
}

// HTML renders the markdown as a complete HTML page
func HTML(doc Document) []byte {
	title := doc.Title
	if title == "" {
		title = "Insight report"
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
	})
	return markdown.ToHTML(Markdown(doc), p, r)
}

func writeRequest(b *bytes.Buffer, req *engine.ExplainRequest) {
	b.WriteString("## Selection\n\n")
	fmt.Fprintf(b, "- Dimensions: %s\n", list(req.Dimensions))
	measures := make([]string, len(req.Measures))
	for i, m := range req.Measures {
		measures[i] = m.String()
	}
	fmt.Fprintf(b, "- Measures: %s\n", list(measures))
	preds := make([]string, len(req.Predicates))
	for i, p := range req.Predicates {
		preds[i] = predicateText(p)
	}
	if len(preds) == 0 {
		preds = []string{"none"}
	}
	fmt.Fprintf(b, "- Predicates: %s\n\n", strings.Join(preds, ", "))
}

func writeInsights(b *bytes.Buffer, res *engine.ExplainResult) {
	b.WriteString("## Insights\n\n")
	if len(res.Insights) == 0 {
		b.WriteString("No insight passed the threshold.\n\n")
	} else {
		b.WriteString("| # | Type | Extension | Score | Detail |\n|---|---|---|---|---|\n")
		for i, s := range res.Insights {
			fmt.Fprintf(b, "| %d | %s | %s | %.3f | %s |\n", i+1, s.Type, extension(s), s.Score, detail(s))
		}
		b.WriteString("\n")
	}
	if len(res.Conditional) > 0 {
		b.WriteString("### Conditional values\n\n| Dimension | Flags |\n|---|---|\n")
		for _, cv := range res.Conditional {
			flags := make([]string, len(cv.Flags))
			for i, f := range cv.Flags {
				flags[i] = fmt.Sprintf("%+d", f)
			}
			fmt.Fprintf(b, "| %s | %s |\n", text(cv.Dimension), strings.Join(flags, " "))
		}
		b.WriteString("\n")
	}
}

type pair struct {
	from, to string
	score    float64
}

func writeRelations(b *bytes.Buffer, rel *engine.Relations, top int) {
	var pairs []pair
	for i, row := range rel.Matrix {
		for j, v := range row {
			if i != j && v > 0 {
				pairs = append(pairs, pair{rel.Fields[i].DisplayName(), rel.Fields[j].DisplayName(), v})
			}
		}
	}
	sort.SliceStable(pairs, func(a, c int) bool { return pairs[a].score > pairs[c].score })
	if len(pairs) > top {
		pairs = pairs[:top]
	}
	b.WriteString("## Strongest relations\n\n")
	if len(pairs) == 0 {
		b.WriteString("No associated field pairs.\n\n")
		return
	}
	b.WriteString("| From | To | Score |\n|---|---|---|\n")
	for _, p := range pairs {
		fmt.Fprintf(b, "| %s | %s | %.3f |\n", text(p.from), text(p.to), p.score)
	}
	b.WriteString("\n")
}

func writeRecommendation(b *bytes.Buffer, rec *recommend.Result) {
	b.WriteString("## Recommended views\n\n")
	for i, v := range rec.Views {
		lock := ""
		if v.Locked {
			lock = " (locked)"
		}
		fmt.Fprintf(b, "%d. %s%s\n", i+1, list(v.Fields), lock)
	}
	b.WriteString("\n")
	if len(rec.Edges) > 0 {
		b.WriteString("| From | To | Score |\n|---|---|---|\n")
		for _, e := range rec.Edges {
			fmt.Fprintf(b, "| %s | %s | %.3f |\n", text(e.From), text(e.To), e.Score)
		}
		b.WriteString("\n")
	}
}

func extension(s insight.InsightSpace) string {
	if len(s.ExtendMeasures) > 0 {
		ms := make([]string, len(s.ExtendMeasures))
		for i, m := range s.ExtendMeasures {
			ms[i] = m.String()
		}
		return list(ms)
	}
	return list(s.ExtendDimensions)
}

func detail(s insight.InsightSpace) string {
	d := s.Description
	switch s.Type {
	case insight.ChildrenMajorFactor, insight.ChildrenOutlier:
		return "child " + text(fmt.Sprint(d.ChildKey))
	case insight.SelectionMeaDistribution:
		return fmt.Sprintf("diff %.3f..%.3f", d.MinDiff, d.MaxDiff)
	}
	return ""
}

func predicateText(p insight.Predicate) string {
	if p.Kind == insight.Continuous {
		return fmt.Sprintf("%s in [%g, %g]", text(p.FieldID), p.Range[0], p.Range[1])
	}
	values := make([]string, len(p.Values))
	for i, v := range p.Values {
		values[i] = text(fmt.Sprint(v))
	}
	return fmt.Sprintf("%s in {%s}", text(p.FieldID), strings.Join(values, ", "))
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	escaped := make([]string, len(items))
	for i, s := range items {
		escaped[i] = text(s)
	}
	return strings.Join(escaped, ", ")
}

// mdEscaper backslash-escapes what markdown, inline HTML or the table syntax
// would otherwise interpret in dataset-supplied text
var mdEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"|", `\|`, "<", `\<`, ">", `\>`, "&", `\&`, "#", `\#`, "!", `\!`,
	"\r", " ", "\n", " ",
)

func text(s string) string {
	return mdEscaper.Replace(s)
}
