package models

// ServiceType is the category shared by catalog entries and bookings.
type ServiceType string

const (
	ServiceSalon       ServiceType = "salon"
	ServiceCleaning    ServiceType = "cleaning"
	ServiceElectrician ServiceType = "electrician"
	ServicePlumber     ServiceType = "plumber"
	ServiceCarWash     ServiceType = "car-wash"
	ServiceSports      ServiceType = "sports"
	ServiceEvents      ServiceType = "events"
)

var serviceTypes = []ServiceType{
	ServiceSalon, ServiceCleaning, ServiceElectrician, ServicePlumber,
	ServiceCarWash, ServiceSports, ServiceEvents,
}

func ServiceTypes() []ServiceType {
	out := make([]ServiceType, len(serviceTypes))
	copy(out, serviceTypes)
	return out
}

func (t ServiceType) Valid() bool {
	for _, s := range serviceTypes {
		if s == t {
			return true
		}
	}
	return false
}
