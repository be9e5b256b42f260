package selection

import (
	"github.com/bwmarrin/snowflake"
	taxdomain "github.com/smallbiznis/gymdesk/internal/tax/domain"
)

const (
	gstID  snowflake.ID = 101
	cgstID snowflake.ID = 102
	sgstID snowflake.ID = 103
	vatID  snowflake.ID = 201
	cessID snowflake.ID = 202
	oldID  snowflake.ID = 301
)

func testCatalog() []taxdomain.TaxSetting {
	return []taxdomain.TaxSetting{
		{ID: gstID, Name: "GST", Code: "gst", Rate: 18, IsActive: true},
		{ID: vatID, Name: "VAT", Code: "vat", Rate: 5, IsInclusive: true, IsActive: true},
		{ID: cgstID, Name: "CGST", Code: "cgst", Rate: 9, IsActive: true},
		{ID: sgstID, Name: "SGST", Code: "sgst", Rate: 9, IsActive: true},
		{ID: cessID, Name: "Cess", Code: "cess", Rate: 1, IsInclusive: true, IsActive: true},
		{ID: oldID, Name: "Service Tax", Code: "service-tax", Rate: 15, IsActive: false},
	}
}
