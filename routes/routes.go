package routes

import (
	"goldennile/booking"
	"goldennile/chats"
	"goldennile/feed"
	"goldennile/itinerary"
	"goldennile/middleware"
	"goldennile/ratelim"
	"goldennile/session"
	"goldennile/trips"

	"github.com/julienschmidt/httprouter"
)

// Deps bundles what route registration needs: the session manager (it
// implements every package's Sessions interface), auth wrappers, the
// websocket hub and the write-route limiter.
type Deps struct {
	Sessions *session.Manager
	Auth     *middleware.Auth
	Hub      *chats.Hub
	Limiter  *ratelim.RateLimiter
}

func RoutesWrapper(router *httprouter.Router, d *Deps) {
	AddFeedRoutes(router, d)
	AddChatRoutes(router, d)
	AddItineraryRoutes(router, d)
	AddTripRoutes(router, d)
	AddBookingRoutes(router, d)
	AddSessionRoutes(router, d)
}

func AddFeedRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/feed/posts", d.Auth.Authenticate(feed.GetPosts(d.Sessions)))
	router.POST("/api/feed/post", d.Limiter.Limit(d.Auth.Authenticate(feed.CreatePost(d.Sessions))))
	router.PUT("/api/feed/post/:postid", d.Limiter.Limit(d.Auth.Authenticate(feed.UpdatePost(d.Sessions))))
	router.DELETE("/api/feed/post/:postid", d.Limiter.Limit(d.Auth.Authenticate(feed.DeletePost(d.Sessions))))
	router.POST("/api/feed/post/:postid/like", d.Limiter.Limit(d.Auth.Authenticate(feed.LikePost(d.Sessions))))
	router.POST("/api/feed/post/:postid/comments", d.Limiter.Limit(d.Auth.Authenticate(feed.CreateComment(d.Sessions))))
	router.PUT("/api/feed/post/:postid/comments/:commentid", d.Limiter.Limit(d.Auth.Authenticate(feed.UpdateComment(d.Sessions))))
	router.DELETE("/api/feed/post/:postid/comments/:commentid", d.Limiter.Limit(d.Auth.Authenticate(feed.DeleteComment(d.Sessions))))
}

func AddChatRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/chats", d.Auth.Authenticate(chats.GetChats(d.Sessions)))
	router.GET("/api/chats/:chatid/messages", d.Auth.Authenticate(chats.GetConversation(d.Sessions)))
	router.POST("/api/chats/:chatid/messages", d.Limiter.Limit(d.Auth.Authenticate(chats.SendMessage(d.Sessions))))
	router.PUT("/api/chats/:chatid/messages/:msgid", d.Limiter.Limit(d.Auth.Authenticate(chats.EditMessage(d.Sessions))))
	router.DELETE("/api/chats/:chatid/messages/:msgid", d.Limiter.Limit(d.Auth.Authenticate(chats.DeleteMessage(d.Sessions))))
	router.GET("/ws/chats/:chatid", d.Auth.Authenticate(chats.WebSocketHandler(d.Sessions, d.Hub)))
}

func AddItineraryRoutes(router *httprouter.Router, d *Deps) {
	router.GET("/api/itinerary", d.Auth.Authenticate(itinerary.GetItinerary(d.Sessions)))
	router.POST("/api/itinerary/activities", d.Auth.Authenticate(itinerary.AddActivity(d.Sessions)))
	router.DELETE("/api/itinerary/activities/:activityid", d.Auth.Authenticate(itinerary.RemoveActivity(d.Sessions)))
	router.PUT("/api/itinerary/activities/:activityid", d.Auth.Authenticate(itinerary.EditActivity(d.Sessions)))
	router.POST("/api/itinerary/reorder", d.Auth.Authenticate(itinerary.ReorderItinerary(d.Sessions)))
	router.PUT("/api/itinerary/start", d.Auth.Authenticate(itinerary.SetTripStart(d.Sessions)))
}

func AddTripRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/trips/generate", d.Limiter.Limit(d.Auth.Authenticate(trips.GenerateItinerary(d.Sessions))))
	router.GET("/api/trips/plan", d.Auth.Authenticate(trips.GetPlan(d.Sessions)))
	router.POST("/api/trips/plan/reorder", d.Auth.Authenticate(trips.ReorderPlan(d.Sessions)))
	router.DELETE("/api/trips/plan", d.Auth.Authenticate(trips.DiscardPlan(d.Sessions)))
	router.POST("/api/trips/programs", d.Limiter.Limit(d.Auth.Authenticate(trips.SaveProgram(d.Sessions))))
	router.GET("/api/trips/programs", d.Auth.Authenticate(trips.GetPrograms(d.Sessions)))
	router.DELETE("/api/trips/programs/:programid", d.Auth.Authenticate(trips.DeleteProgram(d.Sessions)))
}

func AddBookingRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/bookings", d.Limiter.Limit(d.Auth.Authenticate(booking.CreateBooking(d.Sessions))))
	router.GET("/api/bookings/:bookingid/confirmation", d.Auth.Authenticate(booking.DownloadConfirmation(d.Sessions)))
}

func AddSessionRoutes(router *httprouter.Router, d *Deps) {
	router.POST("/api/session", session.StartSession(d.Sessions))
	router.DELETE("/api/session", d.Auth.Authenticate(session.EndSession(d.Sessions)))
}
