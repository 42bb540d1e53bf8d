package auth

// captchaImageSet bundles the tiles for one challenge theme. The label is the
// Spanish display text shown in the instruction line.
type captchaImageSet struct {
	category   string
	label      string
	targetURLs []string
	fillerURLs []string
}

var captchaImageSets = []captchaImageSet{
	{
		category: "animals",
		label:    "animales",
		targetURLs: []string{
			"https://images.unsplash.com/photo-1517849845537-4d257902454a?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1437622368342-7a3d73a34c8f?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1425082661705-1834bfd09dca?w=100&h=100&fit=crop&auto=format",
		},
		fillerURLs: []string{
			"https://images.unsplash.com/photo-1496412705862-e0088f16f791?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1470770841072-f978cf4d019e?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1518791841217-8f162f1e1131?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1560258018-c7db7645254e?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=100&h=100&fit=crop&auto=format",
		},
	},
	{
		category: "cars",
		label:    "autos",
		targetURLs: []string{
			"https://images.unsplash.com/photo-1533473359331-0135ef1b58bf?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1494976388531-d1058494cdd8?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1553440569-bcc63803a83d?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1549317661-bd32c8ce0db2?w=100&h=100&fit=crop&auto=format",
		},
		fillerURLs: []string{
			"https://images.unsplash.com/photo-1480074568708-e7b720bb3f09?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1486312338219-ce68d2c6f44d?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1484723091739-30a097e8f929?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1506905925346-21bda4d32df4?w=100&h=100&fit=crop&auto=format",
		},
	},
	{
		category: "food",
		label:    "comida",
		targetURLs: []string{
			"https://images.unsplash.com/photo-1567620905732-2d1ec7ab7445?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1565299624946-b28f40a0ae38?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1482049016688-2d3e1b311543?w=100&h=100&fit=crop&auto=format",
		},
		fillerURLs: []string{
			"https://images.unsplash.com/photo-1507525428034-b723cf961d3e?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1519046904884-53103b34b206?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1520342868574-5fa3804e551c?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1517849845537-4d257902454a?w=100&h=100&fit=crop&auto=format",
			"https://images.unsplash.com/photo-1494976388531-d1058494cdd8?w=100&h=100&fit=crop&auto=format",
		},
	},
}
