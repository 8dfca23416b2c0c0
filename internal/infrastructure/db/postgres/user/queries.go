package user

const (
	SelectUsers = `
		SELECT uuid, name, email, phone, image_path, created_at, updated_at, deleted_at
		FROM users
		WHERE deleted_at IS NULL
		ORDER BY created_at, uuid
	`
	SelectUserByID = `
		SELECT uuid, name, email, phone, image_path, created_at, updated_at, deleted_at
		FROM users
		WHERE uuid = $1 AND deleted_at IS NULL
	`
	InsertUser = `
		INSERT INTO users (name, email, phone, image_path)
		VALUES ($1, $2, $3, $4)
		RETURNING
		  uuid, name, email, phone, image_path, created_at, updated_at, deleted_at
	`
	// $5 clears the image; otherwise a NULL parameter keeps the column as is.
	// The last returned column is image_path as it was before this update.
	UpdateUserByUUID = `
		WITH prev AS (
		  SELECT uuid, image_path
		  FROM users
		  WHERE uuid = $6 AND deleted_at IS NULL
		  FOR UPDATE
		)
		UPDATE users u
		SET name = COALESCE($1, u.name),
		    email = COALESCE($2, u.email),
		    phone = COALESCE($3, u.phone),
		    image_path = CASE WHEN $5::boolean AND $4::text IS NULL THEN NULL ELSE COALESCE($4, u.image_path) END,
		    updated_at = now()
		FROM prev
		WHERE u.uuid = prev.uuid
		RETURNING
		  u.uuid, u.name, u.email, u.phone, u.image_path, u.created_at, u.updated_at, u.deleted_at,
		  prev.image_path
	`
	SoftDeleteUserByUUID = `
		UPDATE users
		SET deleted_at = now()
		WHERE uuid = $1 AND deleted_at IS NULL
		RETURNING
		  uuid, name, email, phone, image_path, created_at, updated_at, deleted_at
	`
)
