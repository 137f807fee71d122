package knowledge

// Default returns the built-in portfolio data. `init` writes this to
// data/portfolio.yaml so the owner can edit it without touching code.
func Default() *Portfolio {
	return &Portfolio{
		Personal: Personal{
			Name:     "Santiago Ospina",
			Title:    "Software Engineer & Full Stack Developer",
			Location: "Medellín, Colombia",
			Contact: Contact{
				Email:    "santiagospidrobo15@gmail.com",
				Phone:    "+57 3167413127",
				LinkedIn: "https://www.linkedin.com/in/santiago-ospina-idrobo/",
				Website:  "https://sospinai.dev/",
			},
			Summary: "Proactive and people-focused Full Stack Developer with 4-5 years of experience in building and optimizing web applications. Known for strong leadership skills and the ability to foster a collaborative work environment, driven by continuous learning and innovation. Expertise in designing scalable, secure systems and collaborating closely with teams to deliver solutions that meet both technical and business needs.",
		},
		Skills: map[string][]string{
			"programming_languages": {"Python", "JavaScript", "Ruby", "Go"},
			"frameworks":            {"Django", "FastAPI", "React", "Next.js", "Astro", "Ruby on Rails"},
			"databases":             {"PostgreSQL", "MySQL", "MongoDB", "Supabase"},
			"cloud_services":        {"AWS", "GCP"},
			"devops":                {"Docker", "Kubernetes", "GitHub Actions", "CI/CD Pipelines"},
			"ai_ml":                 {"OpenAI API", "Hugging Face", "TensorFlow", "PyTorch", "AI Agents"},
			"ar_vr":                 {"Unity", "Unreal Engine", "Lens Studio"},
			"automation":            {"n8n", "FastAPI", "Power Automate"},
			"soft_skills":           {"Leadership", "Team Building", "Problem Solving", "English", "Algorithms", "Troubleshooting"},
			"other":                 {"Financial Literacy", "Software Architecture"},
		},
		Experience: []Experience{
			{
				Company:  "ID Technology",
				Location: "Medellín",
				Role:     "Team Lead & Full Stack Developer",
				Duration: "Jul 2023 - Present",
				Responsibilities: []string{
					"Led development of scalable web applications using Django/FastAPI for back-end and React/Astro for front-end.",
					"Mentored junior developers and collaborated with designers to deliver secure, user-friendly solutions aligned with client needs.",
					"Spearheaded adoption of modern development practices, reducing delivery time by implementing CI/CD pipelines.",
				},
				Technologies: []string{"Django", "FastAPI", "React", "Astro", "CI/CD"},
			},
			{
				Company:  "Inherently",
				Location: "London",
				Role:     "Full Stack Developer",
				Duration: "Apr 2023 - Present",
				Responsibilities: []string{
					"Built time management tools with Express.js/Supabase and React/Next.js, focusing on responsive and scalable architectures.",
					"Delivered maintainable code by following industry best practices, contributing to long-term platform success.",
					"Optimized database performance to ensure high availability and seamless data retrieval.",
				},
				Technologies: []string{"Express.js", "Supabase", "React", "Next.js"},
			},
			{
				Company:  "Makata Studio",
				Location: "Medellín",
				Role:     "AR/VR Developer",
				Duration: "Sept 2020 - Apr 2023",
				Responsibilities: []string{
					"Designed immersive AR/VR applications using Unity, Unreal Engine, and Lens Studio for platforms like Snapchat.",
					"Collaborated with cross-functional teams to integrate AR/VR solutions and conducted rigorous testing to ensure functionality.",
					"Delivered high-quality, realistic 3D environments while optimizing assets and ensuring performance across devices.",
				},
				Technologies: []string{"Unity", "Unreal Engine", "Lens Studio", "3D Modeling", "iOS Development"},
			},
		},
		Education: []Education{
			{
				Institution: "EAFIT University",
				Location:    "Medellín",
				Degree:      "BSc Software Engineering",
				Duration:    "Jan 2019 - Dec 2024",
				Details:     "Expected to graduate with a Bachelor's degree in Software Engineering.",
			},
			{
				Institution: "Le Wagon",
				Location:    "London",
				Degree:      "Full Stack Development Bootcamp",
				Duration:    "Jan 2023 - Apr 2023",
				Details:     "Completed an intensive Full Stack Web Development bootcamp, building multiple web applications and custom Ruby gems.",
			},
			{
				Institution: "El Corazonista School",
				Location:    "Medellín",
				Degree:      "High School",
				Duration:    "Jan 2007 - Dec 2018",
			},
		},
		AIJourney: AIJourney{
			CurrentFocus: []string{
				"AI Agent Development for business-enhancing automation",
				"AI-powered solutions for real-world business needs",
				"LLM integration and AI agents development",
				"Intensive data processing applications",
			},
			LearningPath: []string{
				"Machine Learning Zoomcamp",
				"Building AI-powered business solutions",
				"AI-driven automation for enterprise environments",
			},
			Interests: []string{
				"AI-driven business automation",
				"AI assistants for productivity & decision-making",
				"Scalable AI solutions for corporate environments",
				"Prompt engineering & AI model fine-tuning",
			},
			NextSteps: []string{
				"Building a portfolio of AI/ML-powered projects",
				"Mastering AI agents built on LLMs",
				"Scaling AI with cloud infrastructure",
				"Experimenting with AI models optimized for real-world enterprise use cases",
			},
		},
		Philosophy: Philosophy{
			Approach: []string{
				"Bridge the gap between technology and business impact",
				"Technology is just a tool; first, understand the business needs",
				"Not everything needs AI or ML; focus on efficiency and real impact",
				"Start small, test solutions, iterate",
			},
			Strengths: []string{
				"Deep understanding of both development & strategy",
				"Ability to translate business challenges into tech solutions",
				"Strong automation & workflow efficiency experience",
				"Leadership in projects across multiple disciplines",
			},
			CareerGoals: []string{
				"AI/ML Engineer with a focus on business-driven AI agents",
				"AI Solutions Architect",
				"AI-driven Automation Expert",
			},
			Passions: []string{"Handball", "Reading", "Programming", "Software Architecture", "Financial Literacy"},
		},
		Projects: []Project{
			{
				Name:         "Portfolio Assistant AI",
				Description:  "AI-powered assistant to showcase my portfolio and answer questions about my experience and skills",
				Technologies: []string{"Go", "OpenAI", "Anthropic Claude"},
				Features: []string{
					"Multi-agent system with specialized roles",
					"Natural language processing for understanding queries",
					"Intelligent routing of questions to appropriate experts",
				},
				GitHub: "https://github.com/Santiagospinai7/portfolio-assistant-ai",
			},
		},
	}
}
