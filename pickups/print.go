package pickups

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"cropshare/db"
	"cropshare/models"
	"cropshare/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func loadForParty(ctx context.Context, pickupID, userID string) (*models.Pickup, int, string) {
	var pickup models.Pickup
	err := db.PickupsCollection.FindOne(ctx, bson.M{"pickupid": pickupID}).Decode(&pickup)
	if err == mongo.ErrNoDocuments {
		return nil, http.StatusNotFound, "Pickup not found"
	} else if err != nil {
		return nil, http.StatusInternalServerError, "Database error"
	}
	if pickup.FarmerID != userID && pickup.NgoID != userID {
		return nil, http.StatusForbidden, "Not authorized"
	}
	return &pickup, 0, ""
}

func confirmPayload(p *models.Pickup) string {
	return fmt.Sprintf("cropshare:pickup:%s:%s", p.PickupID, p.Confirm)
}

// QRCode serves a PNG the farmer scans at handover to confirm the pickup.
func QRCode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pickup, status, msg := loadForParty(ctx, ps.ByName("id"), utils.GetUserIDFromRequest(r))
	if pickup == nil {
		utils.RespondWithError(w, status, msg)
		return
	}

	png, err := qrcode.Encode(confirmPayload(pickup), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// Manifest renders a printable PDF for the pickup with crop, party and
// schedule details plus the confirmation QR.
func Manifest(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pickup, status, msg := loadForParty(ctx, ps.ByName("id"), utils.GetUserIDFromRequest(r))
	if pickup == nil {
		utils.RespondWithError(w, status, msg)
		return
	}
	populate(ctx, pickup)

	png, err := qrcode.Encode(confirmPayload(pickup), qrcode.Medium, 256)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "CropShare Pickup Manifest")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(45, 8, label)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 8, value)
		pdf.Ln(8)
	}

	row("Pickup ID:", pickup.PickupID)
	row("Date:", pickup.Date)
	row("Time window:", pickup.TimeWindow)
	row("Status:", pickup.Status)
	if pickup.Crop != nil {
		row("Crop:", fmt.Sprintf("%s (%s)", pickup.Crop.Title, pickup.Crop.Quantity))
		if pickup.Crop.Location.Address != "" {
			row("Pickup address:", pickup.Crop.Location.Address)
		}
	}
	if pickup.Ngo != nil {
		name := pickup.Ngo.Name
		if pickup.Ngo.OrganizationName != "" {
			name = pickup.Ngo.OrganizationName
		}
		row("Collected by:", name)
	}
	row("Confirmation code:", pickup.Confirm)

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, "Present the QR code below at handover.")

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("pickup-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("pickup-qr", 80, pdf.GetY()+10, 50, 50, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to render PDF")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=pickup-%s.pdf", pickup.PickupID))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
