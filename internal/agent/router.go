package agent

import "strings"

// defaultProjectKeywords mark questions that should go to the Project
// Specialist even when the request does not name a project explicitly.
var defaultProjectKeywords = []string{
	"project",
	"case study",
	"built",
	"github",
	"repository",
	"implementation",
	"demo",
}

// Router decides which agent role handles a question.
type Router struct {
	projectKeywords []string
}

// NewRouter builds a router. Extra keywords from config are matched in
// addition to the built-in set.
func NewRouter(extraProjectKeywords []string) *Router {
	kws := make([]string, 0, len(defaultProjectKeywords)+len(extraProjectKeywords))
	kws = append(kws, defaultProjectKeywords...)
	for _, kw := range extraProjectKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			kws = append(kws, kw)
		}
	}
	return &Router{projectKeywords: kws}
}

// Route picks the agent role for a question. An explicit project request
// always wins; otherwise keyword matching decides between the specialists.
func (r *Router) Route(question string, projectSpecific bool, projectName string) string {
	if projectSpecific && projectName != "" {
		return RoleProject
	}

	q := strings.ToLower(question)
	for _, kw := range r.projectKeywords {
		if strings.Contains(q, kw) {
			return RoleProject
		}
	}
	return RoleKnowledge
}
