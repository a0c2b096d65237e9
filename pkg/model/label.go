package model

import (
	"sort"
	"strings"
)

// Label is a constant name/value pair attached to exported metrics,
// e.g. source=cam0.
type Label struct {
	Name  string
	Value string
}
type Labels []Label

func LabelsFromMap(m map[string]string) Labels {
	labels := make(Labels, 0, len(m))
	for k, v := range m {
		labels = append(labels, Label{Name: k, Value: v})
	}
	sort.Sort(labels)
	return labels
}

func (l Labels) Sorted() Labels {
	sorted := make(Labels, len(l))
	copy(sorted, l)
	sort.Sort(sorted)
	return sorted
}

// Map 同名标签后出现的覆盖先出现的
func (l Labels) Map() map[string]string {
	m := make(map[string]string, len(l))
	for _, label := range l.Sorted() {
		m[label.Name] = label.Value
	}
	return m
}

// 返回类似 "source=cam0,zone=gate" 的字符串
func (l Labels) String() string {
	var b strings.Builder
	for i, label := range l.Sorted() {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(label.Name)
		b.WriteString("=")
		b.WriteString(label.Value)
	}
	return b.String()
}

func (l Labels) Len() int {
	return len(l)
}

func (l Labels) Less(i, j int) bool {
	if l[i].Name != l[j].Name {
		return l[i].Name < l[j].Name
	}
	return l[i].Value < l[j].Value
}

func (l Labels) Swap(i, j int) {
	l[i], l[j] = l[j], l[i]
}
