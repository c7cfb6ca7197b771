// Package docs holds the documentation topics shown by nx topic.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"
)

//go:embed *.md
var topics embed.FS

// Index is the topic listing every other topic.
const Index = "readme"

// Topic returns the markdown of topic.
func Topic(topic string) (string, error) {
	content, err := topics.ReadFile(topic + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found, see nx topic %s", topic, Index)
	}
	return string(content), nil
}

// Topics returns the markdown of several topics, one after the other. "*"
// stands for every topic.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = All()
		}
		for _, topic := range expanded {
			content, err := Topic(topic)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// All lists the topics, the index excluded, in alphabetical order.
func All() []string {
	var res []string
	entries, _ := fs.ReadDir(topics, ".")
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".md")
		if !e.IsDir() && name != Index {
			res = append(res, name)
		}
	}
	slices.Sort(res)
	return res
}
