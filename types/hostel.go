package types

// HostelOccupancy is one row of the Hostel sheet.
type HostelOccupancy struct {
	OccupancyID  string `json:"occupancy_id" sheet:"required"`
	HostelID     string `json:"hostel_id" sheet:"required"`
	RoomType     string `json:"room_type" sheet:"required"`
	FeeStatus    string `json:"fee_status" sheet:"required"`
	RoomNumber   string `json:"room_number" sheet:"required"`
	OccupiedBeds int    `json:"occupied_beds"`
	VacantBeds   int    `json:"vacant_beds"`
	StudentID    string `json:"student_id" sheet:"required"`
	StudentName  string `json:"student_name" sheet:"required"`
	CheckInDate  Date   `json:"check_in_date" sheet:"required"`
	CheckOutDate *Date  `json:"check_out_date,omitempty"`
	Status       string `json:"status" sheet:"required"`
}
