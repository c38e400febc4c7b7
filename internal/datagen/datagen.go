package datagen

import (
	"fmt"
	"math/rand"
	"strings"

	"wompi-harness/internal/model"
)

// Locale tables are plain data so the generation itself stays a pure function
// of the injected randomness source.

type cityRegion struct {
	City   string
	Region string
}

var colombianCities = []cityRegion{
	{"Bogotá", "Cundinamarca"},
	{"Medellín", "Antioquia"},
	{"Cali", "Valle del Cauca"},
	{"Barranquilla", "Atlántico"},
	{"Cartagena", "Bolívar"},
	{"Bucaramanga", "Santander"},
	{"Pereira", "Risaralda"},
	{"Santa Marta", "Magdalena"},
	{"Ibagué", "Tolima"},
	{"Manizales", "Caldas"},
}

var firstNames = []string{
	"Juan", "Carlos", "Andrés", "Santiago", "Felipe", "Camilo", "Daniel",
	"María", "Laura", "Valentina", "Camila", "Sofía", "Isabella", "Daniela",
}

var lastNames = []string{
	"García", "Rodríguez", "Martínez", "López", "González", "Hernández",
	"Pérez", "Sánchez", "Ramírez", "Torres", "Vargas", "Castro",
}

var streetTypes = []string{"Calle", "Carrera", "Avenida", "Transversal", "Diagonal"}

var emailDomains = []string{"example.com", "test.co", "mailtest.com"}

var personalIDTypes = []string{"CC", "CE", "PP"}

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// UserData is a generated test account plus the identity fields the checkout
// form needs.
type UserData struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	FullName    string
	PhoneNumber string
	LegalID     string
	LegalIDType string
}

type AddressData struct {
	AddressLine1 string
	City         string
	Region       string
	PhoneNumber  string
	Country      string
}

// Generator produces realistic Colombian customer data from an injectable
// randomness source, so tests can pin a seed.
type Generator struct {
	rand            *rand.Rand
	defaultPassword string
}

func New(src rand.Source, defaultPassword string) *Generator {
	return &Generator{
		rand:            rand.New(src),
		defaultPassword: defaultPassword,
	}
}

func (g *Generator) UserData() UserData {
	first := firstNames[g.rand.Intn(len(firstNames))]
	last := lastNames[g.rand.Intn(len(lastNames))]
	idType := personalIDTypes[g.rand.Intn(len(personalIDTypes))]

	return UserData{
		Email:       g.email(first, last),
		Password:    g.defaultPassword,
		FirstName:   first,
		LastName:    last,
		FullName:    first + " " + last,
		PhoneNumber: g.ColombianPhone(),
		LegalID:     g.LegalID(idType),
		LegalIDType: idType,
	}
}

func (g *Generator) AddressData() AddressData {
	cityData := colombianCities[g.rand.Intn(len(colombianCities))]

	return AddressData{
		AddressLine1: fmt.Sprintf("%s %d #%d-%d",
			streetTypes[g.rand.Intn(len(streetTypes))],
			g.intn(1, 170),
			g.intn(1, 200),
			g.intn(1, 99)),
		City:        cityData.City,
		Region:      cityData.Region,
		PhoneNumber: g.ColombianPhone(),
		Country:     "CO",
	}
}

// CheckoutData fills a checkout form: customer identity plus a shipping
// address with its own contact phone.
func (g *Generator) CheckoutData() (model.CustomerData, model.ShippingAddress) {
	userData := g.UserData()
	addressData := g.AddressData()

	return model.CustomerData{
			Email:             userData.Email,
			FirstName:         userData.FirstName,
			LastName:          userData.LastName,
			FullName:          userData.FullName,
			PhoneNumber:       userData.PhoneNumber,
			PhoneNumberPrefix: "+57",
			LegalID:           userData.LegalID,
			LegalIDType:       userData.LegalIDType,
		}, model.ShippingAddress{
			AddressLine1: addressData.AddressLine1,
			City:         addressData.City,
			Region:       addressData.Region,
			PhoneNumber:  addressData.PhoneNumber,
			Country:      addressData.Country,
		}
}

// CompanyData is the business variant: NIT document and a company name.
func (g *Generator) CompanyData() (model.CustomerData, model.ShippingAddress) {
	customer, shipping := g.CheckoutData()

	company := fmt.Sprintf("%s %s SAS",
		lastNames[g.rand.Intn(len(lastNames))],
		lastNames[g.rand.Intn(len(lastNames))])

	customer.FirstName = ""
	customer.LastName = ""
	customer.FullName = company
	customer.Email = asciiFold.Replace(strings.ToLower(strings.ReplaceAll(company, " ", "."))) + "@" +
		emailDomains[g.rand.Intn(len(emailDomains))]
	customer.LegalIDType = "NIT"
	customer.LegalID = g.LegalID("NIT")

	return customer, shipping
}

// ColombianPhone generates a mobile number: prefix 3 plus nine digits.
func (g *Generator) ColombianPhone() string {
	return fmt.Sprintf("3%d", g.intn(100000000, 999999999))
}

// LegalID generates a document number with the digit range of its type.
func (g *Generator) LegalID(idType string) string {
	switch idType {
	case "CC": // cédula de ciudadanía, 7-10 digits
		return fmt.Sprintf("%d", g.int63n(1000000, 9999999999))
	case "CE": // cédula de extranjería, 6-7 digits
		return fmt.Sprintf("%d", g.intn(100000, 9999999))
	case "NIT": // 9-10 digits
		return fmt.Sprintf("%d", g.int63n(100000000, 9999999999))
	case "PP": // passport, 8 alphanumeric characters
		chars := make([]byte, 8)
		for i := range chars {
			chars[i] = alphanumerics[g.rand.Intn(len(alphanumerics))]
		}
		return string(chars)
	default:
		return fmt.Sprintf("%d", g.int63n(1000000, 9999999999))
	}
}

var asciiFold = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n",
)

func (g *Generator) email(first, last string) string {
	local := asciiFold.Replace(strings.ToLower(first + "." + last))
	return fmt.Sprintf("%s%d@%s",
		local, g.intn(1, 9999),
		emailDomains[g.rand.Intn(len(emailDomains))])
}

func (g *Generator) intn(min, max int) int {
	return min + g.rand.Intn(max-min+1)
}

func (g *Generator) int63n(min, max int64) int64 {
	return min + g.rand.Int63n(max-min+1)
}
