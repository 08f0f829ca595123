package memory

// Fixture is a sample admin document loaded when the memory backend
// starts with seeding enabled.
type Fixture struct {
	Filename string
	Content  string
}

// Fixtures returns the sample travel documents, one per category.
func Fixtures() []Fixture {
	return []Fixture{
		{
			Filename: "japan-tourist-visa.txt",
			Content: `Japan Tourist Visa Requirements

Citizens of the United States, Canada, the United Kingdom, Australia and the
European Union may enter Japan without a visa for stays of up to 90 days.
Other nationalities must apply for a tourist visa at a Japanese consulate
before travelling.

Required documents: a passport valid for at least six months, a completed
visa application form, a recent photograph, a flight itinerary, proof of
accommodation and bank statements for the last three months.

Standard processing takes five to seven business days. A single entry visa
costs 35 USD and a multiple entry visa costs 70 USD. Working on a tourist
visa is prohibited and tourist visas cannot be extended.`,
		},
		{
			Filename: "airline-baggage-policy.txt",
			Content: `Airline Baggage Policy

Economy passengers may check one bag of up to 23 kg on international
flights. Business class passengers may check two bags of up to 32 kg each.
Carry-on baggage is limited to one bag of 7 kg plus one personal item.

Excess baggage is charged per kilogram at the airport. Prepaying extra
baggage online at least 24 hours before the flight is cheaper.

Check-in opens three hours before international departures and closes
60 minutes before departure. Passengers who miss check-in may be offloaded
and must rebook at their own cost.`,
		},
		{
			Filename: "bali-destination-guide.txt",
			Content: `Bali Destination Guide

Bali is an Indonesian island known for its beaches, rice terraces and
temples. The dry season from April to October is the best time to visit.

Ubud is the cultural centre of the island, with art markets and the Sacred
Monkey Forest. Seminyak and Canggu are popular for beaches, surfing and
nightlife. Uluwatu temple sits on a cliff above the Indian Ocean and hosts
a Kecak dance at sunset.

The local currency is the Indonesian rupiah. Dress modestly when visiting
temples and carry a sarong. Tourists pay a levy of 150,000 rupiah on
arrival.`,
		},
		{
			Filename: "agency-booking-terms.txt",
			Content: `Travel Agency Booking Terms

A deposit of 20 percent of the package price confirms a booking. The
balance is due 30 days before departure. Bookings made within 30 days of
departure must be paid in full.

Cancellations more than 45 days before departure lose the deposit.
Cancellations between 45 and 15 days before departure are charged 50
percent of the package price. Later cancellations are not refundable.

Clients are responsible for their own travel documents. The agency
recommends insurance covering cancellation and medical expenses for every
trip.`,
		},
	}
}
