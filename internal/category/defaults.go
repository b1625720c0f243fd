package category

// Default returns the built-in taxonomy used when no config file supplies one.
// Order matters: earlier rules win ties.
func Default() Ruleset {
	return Ruleset{Rules: []Rule{
		{Name: "deep_work", Weight: 1.0,
			Apps:   []string{"Terminal", "iTerm2", "Cursor", "Code", "VSCode", "PyCharm", "GoLand", "Xcode"},
			Titles: []string{"claude code", "git "},
			Description: "Focused coding and terminal work"},
		{Name: "ai_tools", Weight: 0.8,
			Apps:   []string{"Claude"},
			Titles: []string{"ChatGPT", "Claude", "OpenAI Platform", "Google AI Studio"},
			Description: "AI assistants and platforms"},
		{Name: "development", Weight: 0.8,
			Apps:   []string{"DBeaver", "Postman"},
			Titles: []string{"Supabase", "localhost", "GitHub"},
			Description: "Development tooling and infra"},
		{Name: "writing", Weight: 0.9,
			Apps:   []string{"Notion", "Obsidian", "Notes"},
			Titles: []string{"Google Docs"}},
		{Name: "design", Weight: 0.9,
			Apps:   []string{"Figma", "Sketch"},
			Titles: []string{"Figma", "Canva", "Webflow"}},
		{Name: "presentations", Weight: 0.7,
			Apps:   []string{"Keynote", "Microsoft PowerPoint"},
			Titles: []string{"Google Slides"}},
		{Name: "spreadsheets", Weight: 0.6,
			Apps:   []string{"Numbers", "Microsoft Excel"},
			Titles: []string{"Google Sheets"}},
		{Name: "meetings", Weight: 0.5,
			Apps:   []string{"zoom.us", "Zoom", "Google Meet"},
			Titles: []string{"Zoom Meeting"}},
		{Name: "communication_work", Weight: 0.3,
			Apps:   []string{"Slack"},
			Titles: []string{"Slack |"}},
		{Name: "communication_personal", Weight: 0.1,
			Apps: []string{"Telegram", "Messages", "WhatsApp", "Discord"}},
		{Name: "email", Weight: 0.3,
			Apps:   []string{"Mail", "Outlook"},
			Titles: []string{"Gmail", "Inbox"}},
		{Name: "learning", Weight: 0.7,
			Titles: []string{"Coursera", "tutorial", "documentation", "Stack Overflow"}},
		{Name: "business_tools", Weight: 0.5,
			Apps:   []string{"Stripe"},
			Titles: []string{"Stripe", "Google Calendar", "Analytics"}},
		{Name: "content_creation", Weight: 0.7,
			Titles: []string{"YouTube Studio", "Creator Studio"}},
		{Name: "social_media", Weight: -0.3,
			Titles: []string{"Twitter", "Home / X", "LinkedIn", "Reddit"}},
		{Name: "entertainment", Weight: -0.5,
			Apps:   []string{"Netflix", "Spotify"},
			Titles: []string{"Netflix", "Prime Video", "Watch "}},
		{Name: "news", Weight: -0.2,
			Titles: []string{"News", "Hacker News"}},
		{Name: "system", Weight: 0.0,
			Apps:   []string{"loginwindow", "Finder", "SystemUIServer", "UserNotificationCenter"},
			Titles: []string{"Finder"}},
		{Name: "browser_idle", Weight: 0.0,
			Titles: []string{"New Tab", "Untitled"}},
	}}
}

// DefaultBrowserApps are apps whose titles get a per-site breakdown.
func DefaultBrowserApps() []string {
	return []string{
		"Google Chrome", "Safari", "Firefox", "Arc", "Brave", "Edge",
		"ChatGPT Atlas", "Opera", "Vivaldi",
	}
}

// DefaultTerminalApps are apps eligible for AI-agent detection.
func DefaultTerminalApps() []string {
	return []string{
		"Terminal", "iTerm2", "Warp", "Alacritty", "kitty", "WezTerm", "Ghostty",
	}
}
