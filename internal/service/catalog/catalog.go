package catalog

import "time"

// Category is a maintenance request category offered by the building.
type Category struct {
	Id    string
	Label string
}

// Amenity is a bookable shared facility.
type Amenity struct {
	Id    string
	Label string
}

// TimeSlot is a bookable time range within a day.
type TimeSlot struct {
	Id    string
	Label string
}

// Service provides building-scoped lookups for the workflows. The
// defaults below cover a typical residential building; a per-building
// override can replace them at construction time.
type Service struct {
	categories []Category
	amenities  []Amenity
	slots      []TimeSlot
}

func NewService() *Service {
	return &Service{
		categories: []Category{
			{Id: "plumbing", Label: "🔧 Plumbing"},
			{Id: "electrical", Label: "💡 Electrical"},
			{Id: "heating", Label: "🌡 Heating / AC"},
			{Id: "appliance", Label: "🧺 Appliance"},
			{Id: "common_area", Label: "🏢 Common area"},
			{Id: "other", Label: "📋 Other"},
		},
		amenities: []Amenity{
			{Id: "gym", Label: "🏋️ Gym"},
			{Id: "party_room", Label: "🎉 Party room"},
			{Id: "rooftop", Label: "🌇 Rooftop terrace"},
			{Id: "guest_suite", Label: "🛏 Guest suite"},
		},
		slots: []TimeSlot{
			{Id: "morning", Label: "08:00–12:00"},
			{Id: "afternoon", Label: "12:00–16:00"},
			{Id: "evening", Label: "16:00–20:00"},
			{Id: "night", Label: "20:00–23:00"},
		},
	}
}

func (s *Service) Categories() []Category { return s.categories }
func (s *Service) Amenities() []Amenity   { return s.amenities }
func (s *Service) Slots() []TimeSlot      { return s.slots }

func (s *Service) CategoryById(id string) (Category, bool) {
	for _, c := range s.categories {
		if c.Id == id {
			return c, true
		}
	}
	return Category{}, false
}

func (s *Service) AmenityById(id string) (Amenity, bool) {
	for _, a := range s.amenities {
		if a.Id == id {
			return a, true
		}
	}
	return Amenity{}, false
}

func (s *Service) SlotById(id string) (TimeSlot, bool) {
	for _, sl := range s.slots {
		if sl.Id == id {
			return sl, true
		}
	}
	return TimeSlot{}, false
}

// BookingDates returns the next seven calendar days in the property's
// time zone, formatted YYYY-MM-DD.
func (s *Service) BookingDates(now time.Time, loc *time.Location) []string {
	now = now.In(loc)
	dates := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		dates = append(dates, now.AddDate(0, 0, i).Format("2006-01-02"))
	}
	return dates
}

// ValidBookingDate reports whether the date is one of the next seven
// calendar days.
func (s *Service) ValidBookingDate(date string, now time.Time, loc *time.Location) bool {
	for _, d := range s.BookingDates(now, loc) {
		if d == date {
			return true
		}
	}
	return false
}
