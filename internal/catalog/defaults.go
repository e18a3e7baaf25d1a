// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"time"

	"kartela/internal/models"
)

// Defaults is the catalog a fresh installation is seeded with.
type Defaults struct {
	Categories []models.Category
	Brands     []models.Brand
	Palettes   []models.Palette
	WhatsApp   models.WhatsAppSettings
}

func color(id, name, code string, r, g, b int) models.Item {
	rgb := models.RGB{R: r, G: g, B: b}
	return models.ColorItem(models.Color{ID: id, Name: name, Code: code, RGB: rgb, Hex: rgb.Hex()})
}

// DefaultCatalog returns the built-in categories, brands and palettes.
// Timestamps start at now and advance one second per entity so the seeded
// creation order is stable.
func DefaultCatalog(now time.Time) Defaults {
	categories := []models.Category{
		{ID: "ic-cephe", Name: "İç Cephe", Description: "Duvarlarınız için özel iç cephe renkleri", Icon: "🏠", Order: 0},
		{ID: "dis-cephe", Name: "Dış Cephe", Description: "Binanızın dış yüzeyi için dayanıklı renkler", Icon: "🏢", Order: 1},
		{ID: "mobilya", Name: "Mobilya", Description: "Ahşap yüzeyler için özel mobilya boyaları", Icon: "🪑", Order: 2},
	}

	brands := []models.Brand{
		{ID: "dufa", Name: "Düfa", Description: "Alman kalitesi ve güvenilirliği", Logo: "https://via.placeholder.com/150x80/007a2d/FFFFFF?text=DÜFA", Order: 0},
		{ID: "marshall", Name: "Marshall", Description: "Profesyonel boya çözümleri", Logo: "https://via.placeholder.com/150x80/c41e3a/FFFFFF?text=Marshall", Order: 1},
		{ID: "fawori", Name: "Fawori", Description: "Yenilikçi ve kaliteli ürünler", Logo: "https://via.placeholder.com/150x80/1e4d8b/FFFFFF?text=Fawori", Order: 2},
	}

	palettes := []models.Palette{
		{
			ID: "ic-modern", Name: "Modern Koleksiyonu", CategoryID: "ic-cephe",
			Description: "Çağdaş ve şık iç mekan renkleri",
			Items: []models.Item{
				color("c1", "Kar Beyazı", "KB-100", 255, 255, 255),
				color("c2", "Krem", "KR-200", 245, 240, 230),
				color("c3", "Bej", "BJ-300", 220, 210, 195),
				color("c4", "Açık Gri", "AG-400", 200, 200, 200),
				color("c5", "Koyu Gri", "KG-500", 120, 120, 120),
			},
		},
		{
			ID: "ic-pastel", Name: "Pastel Koleksiyonu", CategoryID: "ic-cephe",
			Description: "Yumuşak ve huzurlu pastel tonlar",
			Items: []models.Item{
				color("c6", "Pudra", "PD-100", 255, 220, 225),
				color("c7", "Mint", "MN-200", 200, 240, 230),
				color("c8", "Lila", "LL-300", 230, 220, 245),
				color("c9", "Açık Mavi", "AM-400", 210, 230, 250),
				color("c10", "Şeftali", "SF-500", 255, 230, 210),
			},
		},
		{
			ID: "dis-klasik", Name: "Klasik Dış Cephe", CategoryID: "dis-cephe",
			Description: "Zamansız ve dayanıklı dış cephe renkleri",
			Items: []models.Item{
				color("c11", "Kırık Beyaz", "DC-KB-100", 250, 248, 245),
				color("c12", "Toprak", "DC-TP-200", 180, 150, 120),
				color("c13", "Taş Gri", "DC-TG-300", 150, 145, 140),
				color("c14", "Koyu Bej", "DC-KB-400", 170, 155, 130),
				color("c15", "Antrasit", "DC-AN-500", 80, 80, 85),
			},
		},
		{
			ID: "mob-ahsap", Name: "Ahşap Tonları", CategoryID: "mobilya",
			Description: "Doğal ahşap görünümü veren renkler",
			Items: []models.Item{
				color("c16", "Açık Meşe", "AM-100", 220, 190, 150),
				color("c17", "Ceviz", "CV-200", 140, 100, 70),
				color("c18", "Koyu Ceviz", "KCV-300", 90, 60, 40),
				color("c19", "Beyaz Lake", "BL-400", 248, 248, 250),
				color("c20", "Antik Kahve", "AK-500", 120, 85, 60),
			},
		},
	}

	tick := now
	next := func() time.Time {
		t := tick
		tick = tick.Add(time.Second)
		return t
	}
	for i := range categories {
		categories[i].CreatedAt = next()
		categories[i].UpdatedAt = categories[i].CreatedAt
	}
	for i := range brands {
		brands[i].CreatedAt = next()
		brands[i].UpdatedAt = brands[i].CreatedAt
	}
	for i := range palettes {
		palettes[i].Webhook = models.DefaultWebhookConfig()
		palettes[i].PhotoUploadEnabled = true
		palettes[i].CreatedAt = next()
		palettes[i].UpdatedAt = palettes[i].CreatedAt
	}

	return Defaults{
		Categories: categories,
		Brands:     brands,
		Palettes:   palettes,
		WhatsApp:   models.DefaultWhatsAppSettings(),
	}
}
