package mysql

// Note: `text` is reserved; keep it quoted everywhere.
const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (product_name, product_key, category, source_id, `text`, rating, sentiment_score, aspect, lang, source)\nVALUES "

// COALESCE keeps the stored value when the new one is NULL.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  product_name    = VALUES(product_name),\n" +
	"  category        = COALESCE(VALUES(category), reviews.category),\n" +
	"  `text`          = VALUES(`text`),\n" +
	"  rating          = COALESCE(VALUES(rating), reviews.rating),\n" +
	"  sentiment_score = COALESCE(VALUES(sentiment_score), reviews.sentiment_score),\n" +
	"  aspect          = COALESCE(VALUES(aspect), reviews.aspect),\n" +
	"  lang            = VALUES(lang),\n" +
	"  source          = COALESCE(VALUES(source), reviews.source)\n"

const insertMissSQL = `
INSERT INTO ingest_misses (product_key, reason)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// product_key holds the folded name; matching is a substring test on it.
const fetchReviewsSQL = "SELECT id, product_name, category, source_id, `text`, rating, sentiment_score, aspect, lang, source\n" +
	"FROM reviews\n" +
	"WHERE product_key LIKE ?\n" +
	"ORDER BY id"

const listProductsSQL = `
SELECT product_name
FROM reviews
WHERE (? = '' OR category = ?)
GROUP BY product_name
ORDER BY product_name COLLATE utf8mb4_bin
`

const listCategoriesSQL = `
SELECT category
FROM reviews
WHERE category IS NOT NULL AND category <> ''
GROUP BY category
ORDER BY category COLLATE utf8mb4_bin
`

// search keeps first-ingested order
const searchProductsSQL = `
SELECT product_name
FROM reviews
WHERE product_key LIKE ? AND (? = '' OR category = ?)
GROUP BY product_name
ORDER BY MIN(id)
`

const productCategorySQL = `
SELECT COALESCE(category, '')
FROM reviews
WHERE product_key LIKE ?
ORDER BY id
LIMIT 1
`
