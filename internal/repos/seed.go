package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo categories/items/banner/blog")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO categories(id,name,slug,description,image_url) VALUES
	  ('cat-weapons','Weapons','weapons','Blades, bows and staves','/media/categories/weapons.png'),
	  ('cat-skins','Skins','skins','Character and weapon skins','/media/categories/skins.png'),
	  ('cat-currency','Currency','currency','In-game gold and gems',NULL)`)

	tx.MustExec(`INSERT INTO items(id,category_id,name,slug,description,price,stock,image_url,stats_json) VALUES
	  ('itm-dragon-blade','cat-weapons','Dragon Blade','dragon-blade','Legendary two-handed sword',149.90,5,'/media/items/dragon-blade.png','{"damage":120,"rarity":"legendary"}'),
	  ('itm-elven-bow','cat-weapons','Elven Bow','elven-bow','Light bow with bonus crit chance',59.50,12,'/media/items/elven-bow.png','{"damage":64,"rarity":"epic"}'),
	  ('itm-void-staff','cat-weapons','Void Staff','void-staff','Sold out until next season',89.00,0,NULL,'{"damage":90,"rarity":"epic"}'),
	  ('itm-neon-skin','cat-skins','Neon Rider Skin','neon-rider-skin','Animated character skin',24.99,40,'/media/items/neon-rider.png','{}'),
	  ('itm-gold-1000','cat-currency','1000 Gold','gold-1000','Delivered to your account within 24h',9.99,500,NULL,'{"amount":1000}')`)

	tx.MustExec(`INSERT INTO homepage_banner(id,title,subtitle,banner_url,is_active) VALUES
	  ('ban-launch','Season 7 is live','New legendary drops every week','/media/banners/season7.png',1)`)

	tx.MustExec(`INSERT INTO blog_categories(id,name,slug,description) VALUES
	  ('bcat-guides','Guides','guides','How-tos and builds')`)
	tx.MustExec(`INSERT INTO blog_posts(id,title,slug,excerpt,content,is_published,published_at,category_id) VALUES
	  ('post-welcome','Welcome to Lootmarket','welcome','What we sell and how delivery works',
	   'Every item is delivered to your in-game account after payment is confirmed.',1,CURRENT_TIMESTAMP,'bcat-guides'),
	  ('post-draft','Upcoming season notes','season-notes','Draft','Not yet published.',0,NULL,'bcat-guides')`)

	return tx.Commit()
}

// seedUsers ensures a few users and one admin exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	mk := func(id, email, name, role, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	users := []u{
		mk("u-alice", "alice@lootmarket.test", "Alice", "user", "Passw0rd!"),
		mk("u-bob", "bob@lootmarket.test", "Bob", "user", "Passw0rd!"),
		mk("u-admin", "admin@lootmarket.test", "Admin", "admin", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			return err
		}
	}

	return tx.Commit()
}
