package domain

import "time"

// UserCompany is the employer affiliation of a client
type UserCompany string

const (
	CompanyIncaucaSAS         UserCompany = "incauca_sas"
	CompanyIncaucaCosecha     UserCompany = "incauca_cosecha"
	CompanyProvidenciaSAS     UserCompany = "providencia_sas"
	CompanyProvidenciaCosecha UserCompany = "providencia_cosecha"
	CompanyConAlta            UserCompany = "con_alta"
	CompanyPichichiSAS        UserCompany = "pichichi_sas"
	CompanyPichichiCoorte     UserCompany = "pichichi_coorte"
	CompanyValorAgregado      UserCompany = "valor_agregado"
)

// RequiresLoanFiles reports whether a loan request from this affiliation
// must carry the payslips and the labor letter.
func (c UserCompany) RequiresLoanFiles() bool {
	return c != CompanyValorAgregado
}

// DocumentType is the kind of identity document
type DocumentType string

const (
	DocumentCitizenshipCard DocumentType = "CC"
	DocumentForeignerID     DocumentType = "CE"
	DocumentPassport        DocumentType = "PASAPORTE"
)

// LoanStatus is owned by the gateway; the front end only displays it
type LoanStatus string

const (
	LoanPending   LoanStatus = "Pendiente"
	LoanApproved  LoanStatus = "Aprobado"
	LoanPostponed LoanStatus = "Aplazado"
	LoanDraft     LoanStatus = "Borrador"
	LoanArchived  LoanStatus = "Archivado"
)

// Color returns the badge colour used by the loan pages
func (s LoanStatus) Color() string {
	switch s {
	case LoanPending:
		return "yellow"
	case LoanApproved:
		return "green"
	case LoanPostponed:
		return "blue"
	case LoanArchived:
		return "red"
	default:
		return "gray"
	}
}

// User is the client profile as returned by the gateway.
// Optional strings are pointers so a JSON null stays distinguishable.
type User struct {
	ID                   string      `json:"id"`
	Email                string      `json:"email"`
	Names                string      `json:"names"`
	FirstLastName        string      `json:"firstLastName"`
	SecondLastName       *string     `json:"secondLastName"`
	CurrentCompanie      UserCompany `json:"currentCompanie"`
	Avatar               *string     `json:"avatar"`
	Phone                *string     `json:"phone"`
	ResidencePhoneNumber *string     `json:"residence_phone_number"`
	PhoneWhatsapp        *string     `json:"phone_whatsapp"`
	BirthDay             *time.Time  `json:"birth_day,omitempty"`
	PlaceOfBirth         *string     `json:"place_of_birth,omitempty"`
	Genre                *string     `json:"genre"`
	ResidenceAddress     *string     `json:"residence_address"`
	City                 *string     `json:"city"`
	IsBanned             bool        `json:"isBanned,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`

	Document        []Document        `json:"Document"`
	LoanApplication []LoanApplication `json:"LoanApplication"`
}

// FullName joins the name fields the way the panel header shows them
func (u *User) FullName() string {
	name := u.Names + " " + u.FirstLastName
	if u.SecondLastName != nil && *u.SecondLastName != "" {
		name += " " + *u.SecondLastName
	}
	return name
}

// Document is the identity document attached to a user
type Document struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	DocumentSides *string      `json:"documentSides"`
	UpID          *string      `json:"upId"`
	ImageWithCC   *string      `json:"imageWithCC"`
	TypeDocument  DocumentType `json:"typeDocument"`
	Number        *string      `json:"number"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// LoanApplication mirrors the gateway loan record
type LoanApplication struct {
	ID                    string     `json:"id"`
	UserID                string     `json:"userId"`
	EmployeeID            *string    `json:"employeeId,omitempty"`
	Cantity               string     `json:"cantity"`
	RequestedAmount       string     `json:"requestedAmount"`
	NewAmount             *string    `json:"newAmount,omitempty"`
	NewAmountOption       *bool      `json:"newAmountOption,omitempty"`
	RejectionReason       *string    `json:"rejectionReason,omitempty"`
	AmountChangeReason    *string    `json:"amountChangeReason,omitempty"`
	HasBankSavingsAccount bool       `json:"hasBankSavingsAccount"`
	BankNumberAccount     string     `json:"bankNumberAccount"`
	Entity                string     `json:"entity"`
	LaborCard             *string    `json:"labor_card,omitempty"`
	FirstFlyer            *string    `json:"firstFlyer,omitempty"`
	SecondFlyer           *string    `json:"secondFlyer,omitempty"`
	ThirdFlyer            *string    `json:"thirdFlyer,omitempty"`
	TermsAndConditions    bool       `json:"terms_and_conditions"`
	Signature             string     `json:"signature"`
	UpSignatureID         string     `json:"upSignatureId"`
	Status                LoanStatus `json:"status"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// ClientUser is the slim user returned by login, register and "who am I"
type ClientUser struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Names          string  `json:"names"`
	FirstLastName  string  `json:"firstLastName"`
	SecondLastName *string `json:"secondLastName,omitempty"`
	Avatar         *string `json:"avatar,omitempty"`
	IsBan          bool    `json:"isBan,omitempty"`
}

// PendingLoan is a loan created on the gateway but not yet confirmed with
// its one-time code.
type PendingLoan struct {
	UserID         string    `json:"user_id"`
	LoanID         string    `json:"loan_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	ExpiresAt      time.Time `json:"expires_at"`
	// SessionHash identifies the session that created the loan
	SessionHash string `json:"-"`
}

// Expired reports whether the record is past its lifetime at now
func (p *PendingLoan) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
