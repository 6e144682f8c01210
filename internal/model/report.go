package model

// Summary is the dashboard headline: registered patients and doctors plus
// today's non-cancelled appointments.
type Summary struct {
	Patients          int `db:"patients" json:"patients"`
	Doctors           int `db:"doctors" json:"doctors"`
	AppointmentsToday int `db:"appointments_today" json:"appointments_today"`
}

type DoctorAppointmentCount struct {
	DoctorID  string `db:"doctor_id" json:"doctor_id"`
	Doctor    string `db:"doctor" json:"doctor"`
	Total     int    `db:"total" json:"total"`
	DateRange string `db:"-" json:"date_range"`
}

type SpecialtyAppointmentCount struct {
	Specialty string `db:"specialty" json:"specialty"`
	Total     int    `db:"total" json:"total"`
}

type AttendedPatientRow struct {
	Date      string `db:"date" json:"date"`
	Patient   string `db:"patient" json:"patient"`
	Doctor    string `db:"doctor" json:"doctor"`
	Specialty string `db:"specialty" json:"specialty"`
}

// AttendanceReport splits closed-out appointments from no-shows.
// Absences count reserved appointments whose time already passed plus
// cancellations.
type AttendanceReport struct {
	Attended  int `json:"attended"`
	Absences  int `json:"absences"`
	Cancelled int `json:"cancelled"`
}
