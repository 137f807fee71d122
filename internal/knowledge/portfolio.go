// Package knowledge holds the static portfolio data the assistant answers from.
// The data is hand-authored, loaded once at startup, and read-only afterwards.
package knowledge

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Portfolio is the root of the static biography/project data.
type Portfolio struct {
	Personal   Personal            `yaml:"personal" json:"personal"`
	Skills     map[string][]string `yaml:"skills" json:"skills"`
	Experience []Experience        `yaml:"experience" json:"experience"`
	Education  []Education         `yaml:"education" json:"education"`
	AIJourney  AIJourney           `yaml:"ai_journey" json:"ai_journey"`
	Philosophy Philosophy          `yaml:"philosophy" json:"philosophy"`
	Projects   []Project           `yaml:"projects" json:"projects"`
}

type Personal struct {
	Name     string  `yaml:"name" json:"name"`
	Title    string  `yaml:"title" json:"title"`
	Location string  `yaml:"location" json:"location"`
	Contact  Contact `yaml:"contact" json:"contact"`
	Summary  string  `yaml:"summary" json:"summary"`
}

type Contact struct {
	Email    string `yaml:"email" json:"email"`
	Phone    string `yaml:"phone" json:"phone"`
	LinkedIn string `yaml:"linkedin" json:"linkedin"`
	Website  string `yaml:"website" json:"website"`
}

type Experience struct {
	Company          string   `yaml:"company" json:"company"`
	Location         string   `yaml:"location" json:"location"`
	Role             string   `yaml:"role" json:"role"`
	Duration         string   `yaml:"duration" json:"duration"`
	Responsibilities []string `yaml:"responsibilities" json:"responsibilities"`
	Technologies     []string `yaml:"technologies" json:"technologies"`
}

type Education struct {
	Degree      string `yaml:"degree" json:"degree"`
	Institution string `yaml:"institution" json:"institution"`
	Location    string `yaml:"location" json:"location"`
	Duration    string `yaml:"duration" json:"duration"`
	Details     string `yaml:"details,omitempty" json:"details,omitempty"`
}

type AIJourney struct {
	CurrentFocus []string `yaml:"current_focus" json:"current_focus"`
	LearningPath []string `yaml:"learning_path" json:"learning_path"`
	Interests    []string `yaml:"interests" json:"interests"`
	NextSteps    []string `yaml:"next_steps" json:"next_steps"`
}

type Philosophy struct {
	Approach    []string `yaml:"approach" json:"approach"`
	Strengths   []string `yaml:"strengths" json:"strengths"`
	CareerGoals []string `yaml:"career_goals" json:"career_goals"`
	Passions    []string `yaml:"passions" json:"passions"`
}

type Project struct {
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Technologies []string `yaml:"technologies" json:"technologies"`
	Features     []string `yaml:"features" json:"features"`
	GitHub       string   `yaml:"github,omitempty" json:"github,omitempty"`
}

// Load reads the portfolio from a YAML file. When the file does not exist the
// built-in default portfolio is returned, so a fresh install works out of the box.
func Load(path string, logger *slog.Logger) (*Portfolio, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("portfolio file not found, using built-in data", "path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("read portfolio file %s: %w", path, err)
	}

	var p Portfolio
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse portfolio file %s: %w", path, err)
	}
	logger.Info("portfolio loaded", "path", path, "projects", len(p.Projects))
	return &p, nil
}

// Save writes the portfolio to a YAML file. Used by `init` to seed an editable copy.
func Save(path string, p *Portfolio) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal portfolio: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// FormatContext renders the full portfolio as structured text for LLM prompts.
func (p *Portfolio) FormatContext() string {
	var sb strings.Builder

	sb.WriteString("# PERSONAL INFORMATION\n")
	fmt.Fprintf(&sb, "Name: %s\n", p.Personal.Name)
	fmt.Fprintf(&sb, "Title: %s\n", p.Personal.Title)
	fmt.Fprintf(&sb, "Location: %s\n", p.Personal.Location)
	fmt.Fprintf(&sb, "Contact: %s | %s\n", p.Personal.Contact.Email, p.Personal.Contact.Phone)
	fmt.Fprintf(&sb, "LinkedIn: %s\n", p.Personal.Contact.LinkedIn)
	fmt.Fprintf(&sb, "Website: %s\n\n", p.Personal.Contact.Website)
	fmt.Fprintf(&sb, "Summary: %s\n\n", p.Personal.Summary)

	sb.WriteString("# SKILLS\n")
	for _, category := range sortedKeys(p.Skills) {
		fmt.Fprintf(&sb, "## %s\n", titleCase(category))
		fmt.Fprintf(&sb, "%s\n\n", strings.Join(p.Skills[category], ", "))
	}

	sb.WriteString("# WORK EXPERIENCE\n")
	for _, job := range p.Experience {
		fmt.Fprintf(&sb, "## %s at %s (%s)\n", job.Role, job.Company, job.Location)
		fmt.Fprintf(&sb, "Duration: %s\n", job.Duration)
		sb.WriteString("Responsibilities:\n")
		for _, r := range job.Responsibilities {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
		fmt.Fprintf(&sb, "Technologies: %s\n\n", strings.Join(job.Technologies, ", "))
	}

	sb.WriteString("# EDUCATION\n")
	for _, edu := range p.Education {
		fmt.Fprintf(&sb, "## %s - %s (%s)\n", edu.Degree, edu.Institution, edu.Location)
		fmt.Fprintf(&sb, "Duration: %s\n", edu.Duration)
		if edu.Details != "" {
			fmt.Fprintf(&sb, "%s\n", edu.Details)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("# AI EXPERTISE AND JOURNEY\n")
	writeSection(&sb, "Current Focus", p.AIJourney.CurrentFocus)
	writeSection(&sb, "Learning Path", p.AIJourney.LearningPath)
	writeSection(&sb, "AI Interests", p.AIJourney.Interests)
	writeSection(&sb, "Next Steps in AI", p.AIJourney.NextSteps)

	sb.WriteString("# PROFESSIONAL PHILOSOPHY\n")
	writeSection(&sb, "Approach to Work", p.Philosophy.Approach)
	writeSection(&sb, "Professional Strengths", p.Philosophy.Strengths)
	writeSection(&sb, "Career Goals", p.Philosophy.CareerGoals)
	writeSection(&sb, "Personal Passions", p.Philosophy.Passions)

	sb.WriteString(p.FormatProjects())

	return sb.String()
}

// FormatProjects renders only the projects section, used by the project agent.
func (p *Portfolio) FormatProjects() string {
	var sb strings.Builder
	sb.WriteString("# PROJECTS\n")
	for _, proj := range p.Projects {
		fmt.Fprintf(&sb, "## %s\n", proj.Name)
		fmt.Fprintf(&sb, "Description: %s\n", proj.Description)
		fmt.Fprintf(&sb, "Technologies: %s\n", strings.Join(proj.Technologies, ", "))
		sb.WriteString("Features:\n")
		for _, f := range proj.Features {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		if proj.GitHub != "" {
			fmt.Fprintf(&sb, "GitHub: %s\n", proj.GitHub)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// ProjectNames returns the names of all portfolio projects, used for routing.
func (p *Portfolio) ProjectNames() []string {
	names := make([]string, 0, len(p.Projects))
	for _, proj := range p.Projects {
		names = append(names, proj.Name)
	}
	return names
}

// FindProject looks up a project by case-insensitive name match.
func (p *Portfolio) FindProject(name string) (Project, bool) {
	for _, proj := range p.Projects {
		if strings.EqualFold(proj.Name, name) {
			return proj, true
		}
	}
	return Project{}, false
}

func writeSection(sb *strings.Builder, heading string, items []string) {
	fmt.Fprintf(sb, "## %s\n", heading)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Insertion sort; skill categories are few.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// titleCase converts snake_case category keys to display headings
// (e.g. "programming_languages" -> "Programming Languages").
func titleCase(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
