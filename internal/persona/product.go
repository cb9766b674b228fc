package persona

import "strings"

// Links that every product post must carry. The model reliably drops them
// unless the prompt demands them outright, so the directives below are stated
// imperatively rather than left to model discretion.
const (
	ProductAppStoreURL = "https://apps.apple.com/us/app/travel-planner-wanderlink/id6747599042"
	ProductSiteURL     = "https://wander-link.com"
	ProductShortLink   = "wander-link.com"
)

// productTriggers are matched case-insensitively against the topic.
var productTriggers = []string{
	"wanderlink",
	"wander-link",
	"travel app",
}

// productContext is the fixed reference block appended to the system
// instruction when a post is about WanderLink.
const productContext = `
IMPORTANT CONTEXT - You are writing about WanderLink, an app YOU (Alexandra) built.
Write as the creator/founder. You built this app solo. It's YOUR product.

=== ABOUT WANDERLINK ===
WanderLink is an AI-powered iOS travel companion app. Full name: "WanderLink - AI Travel Guide".
Available on the App Store: ` + ProductAppStoreURL + `
Website: ` + ProductSiteURL + `
Built with SwiftUI, Firebase, and multiple AI integrations. Created solo by Alexandra. Launched September 2025.

=== WHY IT EXISTS ===
Born from real travel frustrations: endless browser tabs, weather surprises, missing hidden gems,
and the anxiety of traveling solo. One app that replaces all of that.

=== CORE FEATURES ===
- AI Discovery: chat-style AI that answers natural language travel queries and returns personalized destination, activity, and dining suggestions.
- Hidden Gems: AI plus community-sourced off-the-beaten-path locations. No more tourist traps.
- Daily Digest: personalized morning briefing with weather, events, and AI recommendations.
- Trip Planning: day-by-day itineraries, collaborative planning with friends.
- AI Itinerary Builder: destination, dates, budget and interests in, a complete trip plan out.
- Real-Time Messaging: chat with fellow travelers; direct messages, group chats, media sharing.
- Nearby Travelers: see who's traveling near you, set availability, send meetup requests.
- Budget Management: track expenses, split bills, scan receipts, multi-currency support.
- Walking Tours: self-guided themed tours (historical, cultural, food, art).
- AR Discovery: point the camera and see nearby places as floating AR markers with distances.
- Weather-Based Recs: real-time weather data drives smart activity suggestions.
- Emergency SOS: panic button, emergency contacts, embassy alerts, safety check-ins. ALL FREE.
- Offline Maps: download regions for internet-free navigation (Pro feature).

=== PRICING ===
Freemium model:
- FREE: 3 AI discoveries/day, 2 hidden gems/day, 20 messages/day, basic trip planning, weather, maps, emergency SOS.
- PRO ($9.99/mo or $99.99/yr, 7-day free trial): 50 AI discoveries/day, unlimited hidden gems and messages, group chats, offline maps, collaborative planning, expense reports, ad-free.

=== TARGET AUDIENCE ===
Solo travelers, adventure seekers, digital nomads, budget-conscious travelers, safety-conscious
travelers (especially solo women), young independent travelers aged 20-45.

=== BRAND VOICE FOR WANDERLINK POSTS ===
- Speak as the founder/creator - "I built this because..."
- Be authentic about the development journey
- Highlight real problems the app solves
- Use specific feature examples, not vague marketing speak
- Share travel-related tips that tie back to app features
- Emphasize the solo-founder indie dev story when appropriate
- ALWAYS include a call-to-action with the App Store link or website:
  App Store: ` + ProductAppStoreURL + `
  Website: ` + ProductSiteURL + `
- Add these hashtags when relevant: #WanderLink #TravelApp #AITravel #SoloTravel #TravelPlanner #IndieApp`

// linkDirectives holds the per-platform mandatory-link instruction appended
// to the user message for product posts.
var linkDirectives = map[string]string{
	PlatformBlog: "\n\nMANDATORY: include both of these links in the post - " +
		"naturally inline in the body AND in a closing call-to-action:\n" +
		"App Store: " + ProductAppStoreURL + "\nWebsite: " + ProductSiteURL,
	PlatformPhoto: "\n\nMANDATORY: end the caption with both of these links, placed " +
		"right before the hashtags:\n" +
		"App Store: " + ProductAppStoreURL + "\nWebsite: " + ProductSiteURL,
	PlatformMicroblog: "\n\nMANDATORY: include the short link " + ProductShortLink +
		" somewhere in the post. It must still fit in 280 characters.",
}

// ProductTopics are curated topic suggestions for product posts.
var ProductTopics = []string{
	"How WanderLink's AI helps you find hidden gems most tourists miss",
	"Why I built an emergency SOS feature into a travel app (and made it free)",
	"Planning your next trip in 5 minutes with AI-powered itineraries",
	"The end of 20 open browser tabs: how one app replaced my entire travel toolkit",
	"From solo founder to App Store: the story behind WanderLink",
	"Why every solo traveler needs a safety-first travel companion app",
}

// IsProductTopic reports whether the topic references the product.
func IsProductTopic(topic string) bool {
	lowered := strings.ToLower(topic)
	for _, trigger := range productTriggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

// ProductContext returns the fixed reference block for the system instruction.
func ProductContext() string {
	return productContext
}

// LinkDirective returns the platform's mandatory-link instruction for the
// user message. Empty for unknown platforms.
func LinkDirective(platform string) string {
	return linkDirectives[platform]
}
