package canvas

func count(title string, value float64, label string, cols, rows int) WidgetSeed {
	return WidgetSeed{Title: title, ColSpan: cols, RowSpan: rows, Payload: CountPayload{Value: value, Label: label}}
}

func chart(title, prompt string, cols, rows int) WidgetSeed {
	return WidgetSeed{Title: title, ColSpan: cols, RowSpan: rows, Payload: ChartPayload{Prompt: prompt}}
}

func summary(title, content string, cols, rows int) WidgetSeed {
	return WidgetSeed{Title: title, ColSpan: cols, RowSpan: rows, Payload: SummaryPayload{Content: content}}
}

// DefaultTemplates returns the built-in template catalog.
func DefaultTemplates() []Template {
	return []Template{
		{
			ID:          "blank",
			Name:        "Blank Dashboard",
			Description: "Start from scratch with an empty dashboard and build your own custom layout",
			Icon:        "📄",
			Category:    "Basic",
			Widgets:     []WidgetSeed{},
		},
		{
			ID:          "social-media",
			Name:        "Social Media Analytics",
			Description: "Track engagement, reach, and followers across all social platforms",
			Icon:        "📱",
			Category:    "Marketing",
			Widgets: []WidgetSeed{
				count("Total Followers", 24568, "followers", 3, 1),
				count("Engagement Rate", 4.8, "%", 3, 1),
				count("Total Reach", 156200, "users", 3, 1),
				count("Posts This Month", 342, "posts", 3, 1),
				chart("Engagement Over Time", "Show social media engagement trends over the last 30 days", 6, 3),
				chart("Platform Comparison", "Compare follower growth across Facebook, Instagram, and Twitter", 6, 3),
			},
		},
		{
			ID:          "youtube",
			Name:        "YouTube Analytics",
			Description: "Monitor views, subscribers, watch time and video performance metrics",
			Icon:        "📹",
			Category:    "Content",
			Widgets: []WidgetSeed{
				count("Total Views", 1250000, "views", 3, 1),
				count("Subscribers", 45300, "subscribers", 3, 1),
				count("Watch Time", 12500, "hours", 3, 1),
				count("Videos Published", 156, "videos", 3, 1),
				chart("Views & Watch Time Trend", "Show YouTube views and watch time trends for the last 90 days", 8, 3),
				chart("Top Performing Videos", "Display top 10 videos by views in the last month", 4, 3),
			},
		},
		{
			ID:          "instagram",
			Name:        "Instagram Insights",
			Description: "Analyze stories, reels, posts, and profile engagement metrics",
			Icon:        "📸",
			Category:    "Social",
			Widgets: []WidgetSeed{
				count("Profile Visits", 15600, "visits", 4, 1),
				count("Story Views", 8900, "views", 4, 1),
				count("Reel Plays", 125000, "plays", 4, 1),
				chart("Content Performance", "Compare engagement rates between posts, stories, and reels", 6, 3),
				chart("Follower Growth", "Show Instagram follower growth and demographics over 3 months", 6, 3),
			},
		},
		{
			ID:          "executive",
			Name:        "Executive Summary",
			Description: "High-level overview with KPIs, trends and strategic insights",
			Icon:        "📊",
			Category:    "Business",
			Widgets: []WidgetSeed{
				summary("Executive Summary", "Q4 performance shows 23% growth in digital engagement. Social media reach increased by 45K users, with Instagram leading at 18K new followers. Overall engagement rate improved to 4.8%, exceeding the quarterly target of 4.2%.", 12, 2),
				chart("Key Metrics Overview", "Dashboard showing all key performance indicators and their trends", 8, 3),
				chart("Monthly Performance", "Month-over-month comparison of all major metrics", 4, 3),
			},
		},
	}
}
