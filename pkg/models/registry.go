package models

import "time"

const (
	RoleDonor = "donor"
	RoleAdmin = "admin"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	DateOfBirth     string    `json:"dateOfBirth,omitempty"`
	MobileNumber    string    `json:"mobileNumber,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	AgeGroup        string    `json:"ageGroup,omitempty"`
	MaritalStatus   string    `json:"maritalStatus,omitempty"`
	Address         string    `json:"address,omitempty"`
	ProfileImageURL string    `json:"profileImage,omitempty"`
	Role            string    `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Organization struct {
	ID               string    `json:"id"`
	OrganizationName string    `json:"organizationName"`
	ContactPerson    string    `json:"contactPerson"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phoneNumber"`
	Website          string    `json:"website,omitempty"`
	Address          string    `json:"address,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Donation struct {
	ID          string    `json:"id"`
	PaymentID   string    `json:"paymentId"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId,omitempty"`
	DonorName   string    `json:"donorName"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentMode string    `json:"paymentMode,omitempty"`
	DonatedAt   time.Time `json:"date"`
}

type DonationSummary struct {
	Donations   []Donation `json:"donations"`
	Count       int        `json:"totalDonations"`
	TotalAmount int64      `json:"totalAmount"`
}

type Dispatch struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlationId"`
	Status        string         `json:"status"`
	Error         string         `json:"error,omitempty"`
	Result        DispatchResult `json:"result"`
	DispatchedAt  time.Time      `json:"dispatchedAt"`
}
