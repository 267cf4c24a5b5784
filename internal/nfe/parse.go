package nfe

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrMalformed marks files that cannot be turned into a valid Document.
// Callers must treat these as permanent failures.
var ErrMalformed = errors.New("malformed nfe document")

var validate = validator.New()

type xmlProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	InfNFe  xmlInfNFe `xml:"NFe>infNFe"`
}

type xmlInfNFe struct {
	ID    string   `xml:"Id,attr"`
	Ide   xmlIde   `xml:"ide"`
	Emit  xmlParty `xml:"emit"`
	Dest  xmlParty `xml:"dest"`
	Dets  []xmlDet `xml:"det"`
	Total xmlTotal `xml:"total"`
}

type xmlIde struct {
	Number string `xml:"nNF"`
	Series string `xml:"serie"`
	DhEmi  string `xml:"dhEmi"`
	DEmi   string `xml:"dEmi"`
}

type xmlParty struct {
	CNPJ string `xml:"CNPJ"`
	Name string `xml:"xNome"`
}

type xmlDet struct {
	Prod xmlProd `xml:"prod"`
}

type xmlProd struct {
	Code        string          `xml:"cProd"`
	Description string          `xml:"xProd"`
	Unit        string          `xml:"uCom"`
	Quantity    decimal.Decimal `xml:"qCom"`
	UnitPrice   decimal.Decimal `xml:"vUnCom"`
	Total       decimal.Decimal `xml:"vProd"`
}

type xmlTotal struct {
	ICMSTot xmlICMSTot `xml:"ICMSTot"`
}

type xmlICMSTot struct {
	ICMS     decimal.Decimal `xml:"vICMS"`
	Products decimal.Decimal `xml:"vProd"`
	Invoice  decimal.Decimal `xml:"vNF"`
}

// Parser turns a raw file into a Document.
type Parser interface {
	Parse(data []byte) (*Document, error)
}

type parser struct{}

func NewParser() Parser {
	return parser{}
}

// Parse decodes an nfeProc envelope and validates the result. All failures
// wrap ErrMalformed; a file that fails here will never parse differently.
func (parser) Parse(data []byte) (*Document, error) {
	var proc xmlProc
	if err := xml.Unmarshal(data, &proc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := &Document{
		Identification: Identification{
			Number:    strings.TrimSpace(proc.InfNFe.Ide.Number),
			Series:    strings.TrimSpace(proc.InfNFe.Ide.Series),
			AccessKey: accessKey(proc.InfNFe.ID),
			IssuedAt:  issueTime(proc.InfNFe.Ide),
		},
		Issuer: Party{
			CNPJ: strings.TrimSpace(proc.InfNFe.Emit.CNPJ),
			Name: strings.TrimSpace(proc.InfNFe.Emit.Name),
		},
		Recipient: Party{
			CNPJ: strings.TrimSpace(proc.InfNFe.Dest.CNPJ),
			Name: strings.TrimSpace(proc.InfNFe.Dest.Name),
		},
		Totals: Totals{
			ICMS:     proc.InfNFe.Total.ICMSTot.ICMS,
			Products: proc.InfNFe.Total.ICMSTot.Products,
			Invoice:  proc.InfNFe.Total.ICMSTot.Invoice,
		},
	}

	for _, det := range proc.InfNFe.Dets {
		doc.ItemGroups = append(doc.ItemGroups, ItemGroup{
			Products: []ProductRef{{
				Code:        strings.TrimSpace(det.Prod.Code),
				Description: strings.TrimSpace(det.Prod.Description),
				Unit:        strings.TrimSpace(det.Prod.Unit),
				Quantity:    det.Prod.Quantity,
				UnitPrice:   det.Prod.UnitPrice,
				Total:       det.Prod.Total,
			}},
		})
	}

	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return doc, nil
}

func accessKey(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "NFe")
}

// issueTime accepts the v4 timestamp (dhEmi) and the legacy date-only field
// (dEmi). A missing or unparseable value yields the zero time.
func issueTime(ide xmlIde) time.Time {
	if raw := strings.TrimSpace(ide.DhEmi); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.UTC()
		}
	}
	if raw := strings.TrimSpace(ide.DEmi); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
