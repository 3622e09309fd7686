package metadata

/**
 * @brief Decoded texture data ready for upload.
 */
type ImageData struct {
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief The texel format. R8G8B8A8 for decoded images, BCn for DDS. */
	Format Format
	/** @brief Number of mip levels stored in Pixels. */
	MipLevels uint32
	/** @brief Bytes per row (per block row for compressed formats) of the top mip. */
	RowPitch uint32
	/** @brief The pixel data of every mip level, top level first. */
	Pixels []uint8
}
