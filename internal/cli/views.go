package cli

import (
	"strings"

	"github.com/roach88/beantag/internal/bean"
)

// beanView prints a bean as canonical JSON, or as one text line:
// "<type> <id> field=value ..." with fields sorted by name.
type beanView struct {
	b *bean.Bean
}

func (v beanView) MarshalJSON() ([]byte, error) {
	return bean.MarshalCanonical(v.b)
}

func (v beanView) String() string {
	var sb strings.Builder
	sb.WriteString(v.b.Type)
	sb.WriteByte(' ')
	sb.WriteString(v.b.ID)
	for _, f := range v.b.FieldNames() {
		sb.WriteByte(' ')
		sb.WriteString(f)
		sb.WriteByte('=')
		sb.WriteString(bean.Text(v.b.Get(f)))
	}
	return sb.String()
}

type beanListView []beanView

func newBeanList(beans []*bean.Bean) beanListView {
	out := make(beanListView, len(beans))
	for i, b := range beans {
		out[i] = beanView{b: b}
	}
	return out
}

func (l beanListView) String() string {
	if len(l) == 0 {
		return "(no beans)"
	}
	lines := make([]string, len(l))
	for i, v := range l {
		lines[i] = v.String()
	}
	return strings.Join(lines, "\n")
}

// tagsView is the tag titles of one bean. Text output is the comma-joined
// list, the same form the tag arguments take.
type tagsView struct {
	Type string   `json:"type"`
	ID   string   `json:"id"`
	Tags []string `json:"tags"`
}

func newTagsView(b *bean.Bean, titles []string) tagsView {
	if titles == nil {
		titles = []string{}
	}
	return tagsView{Type: b.Type, ID: b.ID, Tags: titles}
}

func (v tagsView) String() string {
	return strings.Join(v.Tags, ",")
}
